package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"embedctl/internal/api"
	"embedctl/internal/provision"
	"embedctl/internal/ui"
)

const tokenDocsURL = "https://docs.embeddable.com/data-modeling/row-level-security#security-tokens-and-security-context"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List embeddables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := session()
			if err != nil {
				return err
			}
			p := application.Printer()
			task := p.Start("Fetching embeddables...")
			items, err := client.ListEmbeddables(commandContext(cmd))
			if err != nil {
				task.Fail("Failed to fetch embeddables")
				return fmt.Errorf("failed to list embeddables: %w", err)
			}
			task.Done(fmt.Sprintf("Found %d embeddable(s)", len(items)))

			f := application.Config().Output
			if f == ui.FormatTable && len(items) == 0 {
				p.Info("No embeddables found.")
				return nil
			}
			return ui.Render(p.Out(), f, items, func() string {
				return embeddableTable(items)
			})
		},
	}
}

func embeddableTable(items []api.Embeddable) string {
	rows := make([][]string, len(items))
	for i, e := range items {
		published := "Not published"
		if e.LastPublishedAt != nil {
			published = e.LastPublishedAt.Local().Format("2006-01-02 15:04")
		}
		rows[i] = []string{e.ID, e.Name, published}
	}
	return ui.Table([]string{"ID", "Name", "Last Published"}, rows)
}

type tokenFlags struct {
	env             string
	expiry          string
	userID          string
	securityContext string
	copy            bool
}

// detailsGiven reports whether any token detail came from flags, in which
// case none are asked for.
func (f *tokenFlags) detailsGiven(cmd *cobra.Command) bool {
	for _, name := range []string{"expiry", "user-id", "security-context"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newTokenCmd() *cobra.Command {
	var flags tokenFlags
	cmd := &cobra.Command{
		Use:   "token [embeddableId]",
		Short: "Generate a security token for an embeddable",
		Long: `Generates a short-lived security token for rendering an embeddable.

The environment is taken from --env, or from the default environment set
with "embed env set-default". Expiry accepts minutes, hours or days such
as 90m, 2h or 7d; anything else means 24h.`,
		Example: `  embed token
  embed token 3f2c9a -e production --expiry 2h --user-id alice --security-context '{"tenant":"acme"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}

			req := provision.TokenRequest{
				EmbeddableID: firstArg(args),
				Environment:  flags.env,
				Expiry:       flags.expiry,
				UserID:       flags.userID,
				AskDetails:   application.Interactive() && !flags.detailsGiven(cmd),
			}
			if flags.securityContext != "" {
				if req.SecurityContext, err = provision.ParseJSONObject(flags.securityContext); err != nil {
					return fmt.Errorf("invalid --security-context: %w", err)
				}
			}
			if req.EmbeddableID == "" {
				if err := application.RequireInteractive("pass the embeddable id"); err != nil {
					return err
				}
			}

			res, err := orch.GenerateToken(commandContext(cmd), client, req)
			if err != nil {
				return err
			}

			if f := application.Config().Output; f != ui.FormatTable {
				return ui.Render(application.Printer().Out(), f, res.Token, nil)
			}
			printToken(application.Printer(), res)
			if flags.copy {
				if err := ui.CopyToClipboard(res.Token.Token); err != nil {
					application.Printer().Warn("%v", err)
				} else {
					application.Printer().Success("Token copied to clipboard")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.env, "env", "e", "", "Environment id (defaults to the stored default environment)")
	cmd.Flags().StringVar(&flags.expiry, "expiry", "", "Token lifetime such as 90m, 2h or 7d (default 24h)")
	cmd.Flags().StringVar(&flags.userID, "user-id", "", "User id recorded in the token")
	cmd.Flags().StringVar(&flags.securityContext, "security-context", "", "Row-level security context as a JSON object")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the token to the clipboard")
	return cmd
}

var rule = strings.Repeat("=", 50)

func printToken(p *ui.Printer, res *provision.TokenResult) {
	tok := res.Token
	p.Println("")
	p.Println("Security Token:")
	p.Println(rule)
	p.Println(tok.Token)
	p.Println(rule)

	if tok.EmbedURL != "" {
		p.Println("")
		p.Println("Embed URL:")
		p.Println(tok.EmbedURL)
	}

	p.Println("")
	p.Println("HTML Embedding Example:")
	p.Println(rule)
	p.Println(fmt.Sprintf("<em-beddable\n  token=%q\n/>", tok.Token))
	p.Println(rule)

	p.Muted("Expires %s (%s)", tok.ExpiresAt.Local().Format("2006-01-02 15:04"), res.Expiry)
	if res.Filtered {
		p.Muted("Data will be filtered by the security context")
	}
	p.Println("")
	p.Println("For more embedding options, visit:")
	p.Println(tokenDocsURL)
}
