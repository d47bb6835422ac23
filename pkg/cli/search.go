package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/sleuth/pkg/cli/config"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	slacksvc "github.com/secmon-lab/sleuth/pkg/service/slack"
	"github.com/secmon-lab/sleuth/pkg/usecase"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	labelColor  = color.New(color.FgCyan, color.Bold)
	headerColor = color.New(color.FgGreen)
	noticeColor = color.New(color.FgYellow)
)

func cmdSearch() *cli.Command {
	var channelID string
	var botCfg config.Bot
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "channel",
			Aliases:     []string{"c"},
			Usage:       "Slack channel ID to search",
			Required:    true,
			Sources:     cli.EnvVars("SLEUTH_CHANNEL"),
			Destination: &channelID,
		},
	}
	flags = append(flags, botCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search channel history from the terminal",
		ArgsUsage: "<allbut|exact|and|or> <argument>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			kind, argument, err := parseSearchArgs(c.Args().Slice())
			if err != nil {
				return err
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			settings, err := botCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load bot settings")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := append([]usecase.Option{usecase.WithSlackService(slackSvc)}, settings.Options()...)
			uc := usecase.New(repo, ucOpts...)

			// Everything before now is scanned
			req, err := search.NewRequest(channelID, slackmodel.FormatTS(time.Now()), "", kind, argument)
			if err != nil {
				return goerr.Wrap(err, "invalid search request")
			}

			rs, record, err := uc.Search.Search(ctx, req)
			if err != nil {
				return err
			}

			names := usecase.ResolveAuthors(ctx, slackSvc, rs.Messages)
			printResults(c.Root().Writer, usecase.RenderResults(rs, names))

			logging.Default().Info("Search completed",
				"record_id", record.ID,
				"scanned", record.Scanned,
				"matches", record.Matches,
			)
			return nil
		},
	}
}

// parseSearchArgs reads "<kind> <argument...>". Remaining arguments are
// joined by a single space, like the chat command's remainder, and escaped
// the way Slack escapes stored message text so both compare alike.
func parseSearchArgs(args []string) (search.Kind, string, error) {
	if len(args) < 2 {
		return "", "", goerr.Wrap(search.ErrMissingArgument, "usage: sleuth search --channel <id> <allbut|exact|and|or> <argument>")
	}

	kind, ok := search.ParseKind(args[0])
	if !ok {
		return "", "", goerr.Wrap(search.ErrUnknownKind, "unknown search kind", goerr.V(search.KindKey, args[0]))
	}

	return kind, slacksvc.EscapeText(strings.Join(args[1:], " ")), nil
}

// printResults writes pages as plain text. Entry content is already
// unescaped by the renderer.
func printResults(w io.Writer, pages []usecase.RenderedPage) {
	if len(pages) == 0 {
		noticeColor.Fprintln(w, "No messages matched.")
		return
	}

	for _, page := range pages {
		labelColor.Fprintln(w, page.Text)
		for _, entry := range page.Entries {
			headerColor.Fprintln(w, entry.Heading())
			fmt.Fprintf(w, "  %s\n", entry.Content)
		}
	}
}
