package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/sleuth/pkg/cli/config"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	"github.com/secmon-lab/sleuth/pkg/usecase"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const recordTimeLayout = "2006-01-02 15:04:05 MST"

var statusColors = map[search.Status]*color.Color{
	search.StatusSucceeded: color.New(color.FgGreen),
	search.StatusFailed:    color.New(color.FgRed),
	search.StatusCancelled: color.New(color.FgYellow),
}

func cmdSearches() *cli.Command {
	var channelID string
	var recordID string
	var limit int
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "channel",
			Aliases:     []string{"c"},
			Usage:       "Only list searches of this channel",
			Sources:     cli.EnvVars("SLEUTH_CHANNEL"),
			Destination: &channelID,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Show a single search record",
			Destination: &recordID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of records",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "searches",
		Usage: "List recorded searches, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			w := c.Root().Writer

			if recordID != "" {
				record, err := uc.Search.GetRecord(ctx, search.RecordID(recordID))
				if err != nil {
					return err
				}
				printRecord(w, record)
				return nil
			}

			records, err := uc.Search.ListRecords(ctx, channelID, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				noticeColor.Fprintln(w, "No searches recorded.")
				return nil
			}
			for _, record := range records {
				printRecord(w, record)
			}
			return nil
		},
	}
}

func printRecord(w io.Writer, r *search.Record) {
	status := string(r.Status)
	if c, ok := statusColors[r.Status]; ok {
		status = c.Sprint(status)
	}

	labelColor.Fprintf(w, "%s", r.ID)
	fmt.Fprintf(w, " [%s]\n", status)
	fmt.Fprintf(w, "  channel:  %s\n", r.ChannelID)
	if r.UserID != "" {
		fmt.Fprintf(w, "  user:     %s\n", r.UserID)
	}
	fmt.Fprintf(w, "  command:  %s %q\n", r.Kind, r.Argument)
	fmt.Fprintf(w, "  started:  %s (%s)\n", r.StartedAt.UTC().Format(recordTimeLayout), r.Duration)
	fmt.Fprintf(w, "  scanned:  %d messages in %d pages, %d matches\n", r.Scanned, r.Pages, r.Matches)
	if r.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", r.Error)
	}
}
