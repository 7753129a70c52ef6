package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/chek-app/crawler/internal/score"
)

var (
	scoreTitle string
	scoreBody  string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a title/body pair offline",
	Long: `Runs the relevance scorer on a single post and prints the result as
JSON. The body is read from --body, or from stdin when the flag is
empty.

Examples:
  # Score inline text
  score --title "汕头投诉" --body "..."

  # Score a file
  score --title "汕头投诉" < post.txt`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreTitle, "title", "", "post title")
	scoreCmd.Flags().StringVar(&scoreBody, "body", "", "post body (stdin when empty)")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	body := scoreBody
	if body == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return eris.Wrap(err, "read stdin")
		}
		body = strings.TrimSpace(string(raw))
	}

	res := score.Score(scoreTitle, body)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
