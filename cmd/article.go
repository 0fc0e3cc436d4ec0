package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pagecraft/article/internal/jobs"
	"github.com/pagecraft/article/internal/model"
	"github.com/pagecraft/article/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(trashCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(swapHomeCmd())
	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(invalidateCmd())
	rootCmd.AddCommand(purgeCmd())
}

func createCmd() *cobra.Command {
	var title string
	var template string
	var actor string
	var group string
	var publishNow bool

	command := &cobra.Command{
		Use:     "create",
		Short:   "create and save a new article",
		Example: "article create -t <title> -a <actor> [--template <ref>] [--publish]",
		Run: func(cmd *cobra.Command, args []string) {
			if missing := checkMissingFlags(map[string]string{"title": title, "actor": actor}); len(missing) > 0 {
				logrus.Errorf("missing required flags: %s", strings.Join(missing, ", "))
				return
			}

			svc, _ := newEngine()
			ctx := context.Background()

			draft, err := svc.Create(ctx, title, template)
			if err != nil {
				logrus.Error(err)
				return
			}
			if publishNow {
				now := time.Now().UTC()
				draft.Published = &now
			}

			view, err := svc.Save(ctx, draft, actor, group)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("created article %d version %d at /%s", view.ArticleNumber, view.VersionNumber, view.URL)
		},
	}

	command.Flags().StringVarP(&title, "title", "t", "", "article title (required)")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")
	command.Flags().StringVar(&template, "template", "", "body template reference")
	command.Flags().StringVarP(&group, "group", "g", "", "owning group name")
	command.Flags().BoolVar(&publishNow, "publish", false, "publish immediately")

	command.Flags().SortFlags = false

	return command
}

func saveCmd() *cobra.Command {
	var rowID uint
	var number int
	var version int
	var title string
	var body string
	var roles string
	var publishAt string
	var actor string
	var group string

	command := &cobra.Command{
		Use:     "save",
		Short:   "save an edit or a new version of an existing article",
		Long:    "save applies an edit to the row given by --id; --version 0 creates a new version instead",
		Example: "article save -d <row-id> -n <number> -v 0 -t <title> -c <body> -a <actor>",
		Run: func(cmd *cobra.Command, args []string) {
			if missing := checkMissingFlags(map[string]string{"title": title, "actor": actor}); len(missing) > 0 || number == 0 {
				logrus.Errorf("missing required flags")
				return
			}

			svc, _ := newEngine()
			ctx := context.Background()

			a := &model.Article{
				ID:            rowID,
				ArticleNumber: number,
				VersionNumber: version,
				Title:         title,
				Body:          body,
				RoleList:      roles,
			}
			if publishAt != "" {
				at, err := time.Parse(time.RFC3339, publishAt)
				if err != nil {
					logrus.Errorf("invalid publish time, expected RFC3339: %v", err)
					return
				}
				at = at.UTC()
				a.Published = &at
			}

			view, err := svc.Save(ctx, a, actor, group)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("saved article %d version %d at /%s", view.ArticleNumber, view.VersionNumber, view.URL)
		},
	}

	command.Flags().UintVarP(&rowID, "id", "d", 0, "row id being edited (required)")
	command.Flags().IntVarP(&number, "number", "n", 0, "article number (required)")
	command.Flags().IntVarP(&version, "version", "v", 0, "version number, 0 creates a new version")
	command.Flags().StringVarP(&title, "title", "t", "", "article title (required)")
	command.Flags().StringVarP(&body, "content", "c", "", "article body")
	command.Flags().StringVar(&roles, "roles", "", "role list")
	command.Flags().StringVar(&publishAt, "published", "", "publish time, RFC3339")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")
	command.Flags().StringVarP(&group, "group", "g", "", "owning group name")

	command.Flags().SortFlags = false

	return command
}

func lookupCmd() *cobra.Command {
	var path string
	var lang string
	var latest bool
	var inactive bool

	command := &cobra.Command{
		Use:     "lookup",
		Short:   "resolve a path to its visible article version",
		Example: "article lookup -p <path> [--latest] [--inactive]",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			view, err := svc.Lookup(context.Background(), path, lang, !latest, !inactive)
			if errors.Is(err, service.ErrNotFound) {
				logrus.Warnf("no article at %q", path)
				return
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("%s (v%d, %s)\n", color.New(color.Bold).Sprint(view.Title), view.VersionNumber, view.Status.Label())
			fmt.Printf("url: /%s\n", view.URL)
			if view.Published != nil {
				fmt.Printf("published: %s\n", view.Published.Format(time.RFC3339))
			}
			fmt.Println(view.Body)
		},
	}

	command.Flags().StringVarP(&path, "path", "p", "", "url path, empty means the home page")
	command.Flags().StringVarP(&lang, "lang", "l", "", "language")
	command.Flags().BoolVar(&latest, "latest", false, "return the latest version regardless of publish state")
	command.Flags().BoolVar(&inactive, "inactive", false, "include inactive articles")

	command.Flags().SortFlags = false

	return command
}

func listCmd() *cobra.Command {
	var trash bool

	command := &cobra.Command{
		Use:     "list",
		Short:   "list articles, one row per content group",
		Example: "article list [--trash]",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()
			ctx := context.Background()

			var (
				summaries []service.Summary
				err       error
			)
			if trash {
				summaries, err = svc.ListTrash(ctx)
			} else {
				summaries, err = svc.ListLatest(ctx, nil)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			printSummaries(summaries)
		},
	}

	command.Flags().BoolVar(&trash, "trash", false, "list trashed articles instead")

	return command
}

func printSummaries(summaries []service.Summary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Number", "Version", "Title", "URL", "Status", "Published", "Updated", "Group"})
	table.SetBorder(false)

	for _, sum := range summaries {
		title := sum.Title
		if sum.IsRoot {
			title = color.New(color.Bold).Sprint(title)
		}
		published := ""
		if sum.Published != nil {
			published = sum.Published.Format(time.RFC3339)
		}
		table.Append([]string{
			fmt.Sprintf("%d", sum.ArticleNumber),
			fmt.Sprintf("%d", sum.VersionNumber),
			title,
			"/" + sum.URL,
			sum.Status,
			published,
			sum.Updated.Format(time.RFC3339),
			sum.OwnerGroup,
		})
	}

	table.Render()
}

func trashCmd() *cobra.Command {
	var number int
	var actor string

	command := &cobra.Command{
		Use:     "trash",
		Short:   "move a whole article group to the trash",
		Example: "article trash -n <number> -a <actor>",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			count, err := svc.TrashArticleGroup(context.Background(), number, actor)
			if err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("trashed %d rows of article %d", count, number)
		},
	}

	command.Flags().IntVarP(&number, "number", "n", 0, "article number (required)")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")

	return command
}

func restoreCmd() *cobra.Command {
	var number int
	var actor string

	command := &cobra.Command{
		Use:     "restore",
		Short:   "restore a trashed article group",
		Example: "article restore -n <number> -a <actor>",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			count, err := svc.RestoreArticleGroup(context.Background(), number, actor)
			if err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("restored %d rows of article %d", count, number)
		},
	}

	command.Flags().IntVarP(&number, "number", "n", 0, "article number (required)")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")

	return command
}

func statusCmd() *cobra.Command {
	var number int
	var status string
	var actor string

	command := &cobra.Command{
		Use:     "status",
		Short:   "set the status of every row of an article group",
		Example: "article status -n <number> -s active|inactive|deleted -a <actor>",
		Run: func(cmd *cobra.Command, args []string) {
			var target model.Status
			switch status {
			case "active":
				target = model.StatusActive
			case "inactive":
				target = model.StatusInactive
			case "deleted":
				target = model.StatusDeleted
			default:
				logrus.Errorf("unknown status %q", status)
				return
			}

			svc, _ := newEngine()

			count, err := svc.SetStatus(context.Background(), number, target, actor)
			if err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("updated %d rows of article %d to %s", count, number, target.Label())
		},
	}

	command.Flags().IntVarP(&number, "number", "n", 0, "article number (required)")
	command.Flags().StringVarP(&status, "status", "s", "", "target status (required)")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")

	return command
}

func swapHomeCmd() *cobra.Command {
	var number int
	var actor string

	command := &cobra.Command{
		Use:     "swap-home",
		Short:   "make an article group the home page",
		Example: "article swap-home -n <number> -a <actor>",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			err := svc.SwapHomePage(context.Background(), number, actor)
			if err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("article %d is now the home page", number)
		},
	}

	command.Flags().IntVarP(&number, "number", "n", 0, "article number (required)")
	command.Flags().StringVarP(&actor, "actor", "a", "", "acting user id (required)")

	return command
}

func menuCmd() *cobra.Command {
	var lang string

	command := &cobra.Command{
		Use:     "menu",
		Short:   "print the site menu built from live articles",
		Example: "article menu [-l <lang>]",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			items, err := svc.Menu(context.Background(), lang)
			if err != nil {
				logrus.Error(err)
				return
			}
			for _, item := range items {
				fmt.Printf("%s -> /%s\n", item.Title, item.URL)
			}
		},
	}

	command.Flags().StringVarP(&lang, "lang", "l", "", "language")

	return command
}

func invalidateCmd() *cobra.Command {
	var filter string

	command := &cobra.Command{
		Use:     "invalidate",
		Short:   "remove cached entries, all of them or those matching a filter",
		Example: "article invalidate [-f <substring>]",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _ := newEngine()

			res, err := svc.Invalidate(context.Background(), filter)
			if err != nil {
				logrus.Error(err)
				return
			}
			if !res.CacheConnected {
				logrus.Warn("cache not reachable, nothing removed")
				return
			}
			logrus.Infof("removed %d cache keys", len(res.RemovedKeys))
		},
	}

	command.Flags().StringVarP(&filter, "filter", "f", "", "case-insensitive key substring, empty removes everything")

	return command
}

func purgeCmd() *cobra.Command {
	var retention time.Duration
	var schedule string
	var watch bool

	command := &cobra.Command{
		Use:     "purge",
		Short:   "physically erase long-trashed article rows",
		Example: "article purge --retention 720h [--watch --schedule @hourly]",
		Run: func(cmd *cobra.Command, args []string) {
			_, st := newEngine()
			job := jobs.NewTrashPurge(schedule, retention, st)

			if !watch {
				job.Run()
				return
			}

			executor := jobs.NewTaskExecutor([]jobs.CronJob{job})
			executor.Run()
			defer executor.Stop()
			select {}
		},
	}

	command.Flags().DurationVar(&retention, "retention", 30*24*time.Hour, "how long trashed rows are kept")
	command.Flags().StringVar(&schedule, "schedule", "@hourly", "cron schedule used with --watch")
	command.Flags().BoolVar(&watch, "watch", false, "keep running on the schedule")

	command.Flags().SortFlags = false

	return command
}
