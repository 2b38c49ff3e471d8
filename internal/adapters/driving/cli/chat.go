package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var (
	chatSession string
	chatMessage string
	chatSuggest bool
	chatJSON    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [analysis-id]",
	Short: "Ask questions about an analysed document",
	Long: `Answers questions grounded in the clauses of an analysed document.

With --message the question is answered once and the command exits.
Without it, questions are read line by line until EOF or "exit".
Use --session to continue an earlier conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session to continue")
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "ask a single question and exit")
	chatCmd.Flags().BoolVar(&chatSuggest, "suggest", false, "print suggested questions and exit")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output replies as JSON")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	analysisID := args[0]

	if chatSuggest {
		questions, err := chatService.SuggestedQuestions(cmd.Context(), analysisID)
		if err != nil {
			return fmt.Errorf("failed to suggest questions: %w", err)
		}
		if wantJSON(cmd, chatJSON) {
			return printJSON(cmd, questions)
		}
		for i, q := range questions {
			cmd.Printf("  %d. %s\n", i+1, q)
		}
		return nil
	}

	if chatMessage != "" {
		_, err := askOnce(cmd, analysisID, chatSession, chatMessage)
		return err
	}
	return chatLoop(cmd, analysisID)
}

func askOnce(cmd *cobra.Command, analysisID, sessionID, question string) (*domain.ChatReply, error) {
	reply, err := chatService.Ask(cmd.Context(), domain.ChatRequest{
		Message:    question,
		AnalysisID: analysisID,
		SessionID:  sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}

	if wantJSON(cmd, chatJSON) {
		return reply, printJSON(cmd, reply)
	}
	cmd.Println(reply.Text)
	if reply.Fallback {
		cmd.Println(dimStyle.Render("(no answer provider available)"))
	} else {
		cmd.Println(dimStyle.Render(fmt.Sprintf("confidence %.2f, session %s", reply.Confidence, reply.SessionID)))
	}
	return reply, nil
}

func chatLoop(cmd *cobra.Command, analysisID string) error {
	sessionID := chatSession
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Printf("Chatting about %s. Type \"exit\" to quit.\n", analysisID)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply, err := askOnce(cmd, analysisID, sessionID, question)
		if err != nil {
			return err
		}
		sessionID = reply.SessionID
		cmd.Println()
	}
}
