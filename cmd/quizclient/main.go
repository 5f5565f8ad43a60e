package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/speedrunhq/quiz-client/internal/config"
	"github.com/speedrunhq/quiz-client/internal/leaderboard"
	"github.com/speedrunhq/quiz-client/internal/logging"
	"github.com/speedrunhq/quiz-client/internal/metrics"
	"github.com/speedrunhq/quiz-client/internal/session"
	"github.com/speedrunhq/quiz-client/internal/signon"
	"github.com/speedrunhq/quiz-client/internal/transport"
	"github.com/speedrunhq/quiz-client/internal/upload"
)

func main() {
	// Optional .env for local development; ignore absence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Tag every log line of this run so overlapping sessions in aggregated
	// logs stay distinguishable.
	logger := logging.New(cfg.Name, cfg.Env).With().
		Str("session_id", uuid.NewString()).
		Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	switch os.Args[1] {
	case "host":
		err = runHost(ctx, cfg, m)
	case "join":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		err = runParticipant(ctx, cfg, m, os.Args[2])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error().Err(err).Msg("session ended with error")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: quizclient host | quizclient join <room-id>")
}

func buildClient(cfg *config.App, logger zerolog.Logger, m *metrics.Metrics) (*session.Client, *transport.Socket) {
	sock := transport.NewSocket(cfg.SpeedRunURL, logger, m)
	nav := session.NavigatorFunc(func(view session.View) {
		fmt.Printf(">> now showing: %s\n", view)
	})
	client := session.NewClient(sock, nav, logger, m, session.Options{
		ReconnectInitialInterval: cfg.Reconnect.InitialInterval,
		ReconnectMaxElapsed:      cfg.Reconnect.MaxElapsed,
	})
	client.BindSocket(sock)
	return client, sock
}

func runHost(ctx context.Context, cfg *config.App, m *metrics.Metrics) error {
	logger := logging.FromContext(ctx)
	auth, err := signon.NewClient(cfg.SignOnURL, logger).HostQuiz(ctx)
	if err != nil {
		return fmt.Errorf("sign on as host: %w", err)
	}
	claims, err := signon.DecodeCredential(auth.AccessToken)
	if err != nil {
		return err
	}
	fmt.Printf("hosting room %s\n", claims.RoomID)

	client, _ := buildClient(cfg, logger, m)
	go client.Run(ctx)
	client.StartHost(claims.RoomID, auth.AccessToken)

	uploader := upload.NewClient(cfg.UploadURL, logger)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "upload":
			if len(fields) != 2 {
				fmt.Println("usage: upload <quiz-file.json>")
				continue
			}
			doUpload(ctx, uploader, fields[1], auth.AccessToken)
		case "questions":
			client.Dispatch(session.RequestQuestionSet{Requesting: true})
		case "config":
			if len(fields) < 3 {
				fmt.Println("usage: config <quiz-name> <seconds-per-question> [categories...]")
				continue
			}
			duration, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("seconds-per-question must be a number")
				continue
			}
			snap, _ := client.Snapshot()
			indexes := make([]int, len(snap.Host.Questions))
			for i := range indexes {
				indexes[i] = i
			}
			client.Dispatch(session.SubmitHostConfig{
				QuizName:                fields[1],
				Categories:              fields[3:],
				DurationSeconds:         duration,
				SelectedQuestionIndexes: indexes,
			})
		case "start":
			client.Dispatch(session.StartQuiz{})
		case "summary":
			printHostSummary(client)
		case "board":
			printLeaderboard(client, "")
		case "quit":
			client.Dispatch(session.ReturnToHome{})
			return nil
		default:
			fmt.Println("commands: upload, questions, config, start, summary, board, quit")
		}
	}
	return scanner.Err()
}

func runParticipant(ctx context.Context, cfg *config.App, m *metrics.Metrics, roomID string) error {
	logger := logging.FromContext(ctx)
	auth, err := signon.NewClient(cfg.SignOnURL, logger).JoinQuiz(ctx, roomID)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	claims, err := signon.DecodeCredential(auth.AccessToken)
	if err != nil {
		return err
	}
	fmt.Printf("joined room %s\n", claims.RoomID)

	client, _ := buildClient(cfg, logger, m)
	go client.Run(ctx)
	client.StartParticipant(claims.RoomID, auth.AccessToken, claims.UserID)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "name":
			if len(fields) < 2 {
				fmt.Println("usage: name <display-name>")
				continue
			}
			client.Dispatch(session.SetDisplayName{Name: strings.Join(fields[1:], " ")})
		case "question":
			printQuestion(client)
		case "answer":
			if len(fields) != 2 {
				fmt.Println("usage: answer <option,option,...>")
				continue
			}
			dispatchAnswer(client, fields[1])
		case "board":
			snap, _ := client.Snapshot()
			printLeaderboard(client, snap.Participant.UserID)
		case "summary":
			printParticipantSummary(client)
		case "quit":
			client.Dispatch(session.ReturnToHome{})
			return nil
		default:
			fmt.Println("commands: name, question, answer, board, summary, quit")
		}
	}
	return scanner.Err()
}

func doUpload(ctx context.Context, uploader *upload.Client, path, credential string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("read quiz file: %v\n", err)
		return
	}
	if _, err := upload.ParseQuizFile(data); err != nil {
		fmt.Printf("quiz file invalid: %v\n", err)
		return
	}
	if err := uploader.UploadQuiz(ctx, path, strings.NewReader(string(data)), credential); err != nil {
		fmt.Printf("upload failed: %v\n", err)
		return
	}
	fmt.Println("quiz uploaded")
}

func dispatchAnswer(client *session.Client, selection string) {
	var indexes []int
	for _, part := range strings.Split(selection, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			fmt.Println("options must be numbers")
			return
		}
		indexes = append(indexes, idx)
	}
	snap, _ := client.Snapshot()
	if snap.Participant.CurrentQuestion == nil {
		fmt.Println("no question active")
		return
	}
	client.Dispatch(session.SubmitAnswer{
		QuestionIndex:         snap.Participant.CurrentQuestion.QuestionIndex,
		SelectedOptionIndexes: indexes,
	})
}

func printQuestion(client *session.Client) {
	snap, _ := client.Snapshot()
	q := snap.Participant.CurrentQuestion
	if q == nil {
		fmt.Println("no question active")
		return
	}
	fmt.Printf("Q%d/%d (%d to select): %s\n", q.QuestionIndex+1, snap.Participant.NumberOfQuestions, q.NumberOfOptionsToSelect, q.Question)
	for i, opt := range q.Options {
		fmt.Printf("  [%d] %s\n", i, opt)
	}
}

func printLeaderboard(client *session.Client, focalID string) {
	snap, _ := client.Snapshot()
	ranked := leaderboard.SortByScore(snap.Common.Leaderboard)
	for _, row := range leaderboard.Window(ranked, focalID) {
		if row.Omission {
			fmt.Println("   ...")
			continue
		}
		marker := "  "
		if row.Entry.UserID == focalID && focalID != "" {
			marker = "->"
		}
		fmt.Printf("%s %2d. %-20s %d\n", marker, row.Rank, row.Entry.Name, row.Entry.Score)
	}
	fmt.Printf("finished: %d/%d\n", snap.Common.TotalFinished, len(snap.Common.Leaderboard))
}

func printHostSummary(client *session.Client) {
	snap, _ := client.Snapshot()
	fmt.Printf("time elapsed: %ds\n", snap.Host.TotalTimeElapsed/1000)
	for i, q := range snap.Host.Summary {
		fmt.Printf("Q%d %s - correct %d, incorrect %d, timed out %d\n",
			i+1, q.Question, len(q.CorrectAnswerers), len(q.IncorrectAnswerers), len(q.TimeExpiredAnswerers))
	}
}

func printParticipantSummary(client *session.Client) {
	snap, _ := client.Snapshot()
	fmt.Printf("time elapsed: %ds, avg answer: %dms\n", snap.Participant.TotalTimeElapsed/1000, snap.Participant.AvgAnswerTime)
	for i, q := range snap.Participant.Summary {
		fmt.Printf("Q%d %s - picked %v, correct %v\n", i+1, q.Question, q.ParticipantOptions, q.CorrectOptions)
	}
}
