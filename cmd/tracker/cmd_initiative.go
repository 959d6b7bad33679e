package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-slug"
	"github.com/spf13/cobra"

	"tracker/internal/initiative"
)

var directoryFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List initiatives in a directory",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id> [readme|notes|comms|links]",
	Short: "Print an initiative document (README by default)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runShow,
}

var newFlags struct {
	name string
	kind string
}

var newCmd = &cobra.Command{
	Use:   "new [id]",
	Short: "Create an initiative from the templates",
	Long:  "Create an initiative. When no id is given it is derived from --name.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNew,
}

var noteCmd = &cobra.Command{
	Use:   "note <id> <text...>",
	Short: "Append a note under today's heading",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNote,
}

var commFlags struct {
	channel string
	link    string
	context string
}

var commCmd = &cobra.Command{
	Use:   "comm <id>",
	Short: "Log a communication in comms.md",
	Args:  cobra.ExactArgs(1),
	RunE:  runComm,
}

var setFlags struct {
	from string
}

var setCmd = &cobra.Command{
	Use:   "set <id> <readme|notes|comms|links>",
	Short: "Replace a document with the contents of a file or stdin",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show recorded changes to an initiative",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	for _, cmd := range []*cobra.Command{listCmd, showCmd, newCmd, noteCmd, commCmd, setCmd, historyCmd} {
		cmd.Flags().StringVarP(&directoryFlag, "directory", "d", "", "Configured directory name (default directory if empty)")
	}

	newCmd.Flags().StringVar(&newFlags.name, "name", "", "Initiative name (required)")
	newCmd.Flags().StringVar(&newFlags.kind, "type", "", "Initiative type")
	_ = newCmd.MarkFlagRequired("name")

	f := commCmd.Flags()
	f.StringVar(&commFlags.channel, "channel", "", "Channel, e.g. Slack or Email (required)")
	f.StringVar(&commFlags.link, "link", "", "Link to the message or thread (required)")
	f.StringVar(&commFlags.context, "context", "", "Short context (required)")
	_ = commCmd.MarkFlagRequired("channel")
	_ = commCmd.MarkFlagRequired("link")
	_ = commCmd.MarkFlagRequired("context")

	setCmd.Flags().StringVar(&setFlags.from, "from", "-", "File to read the new content from, - for stdin")

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum number of entries")
}

func runList(cmd *cobra.Command, _ []string) error {
	items, err := openService().ListInitiatives(cmd.Context(), directoryFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No initiatives found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTYPE\tDEADLINE\tBLOCKERS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", item.ID, item.Name, item.Status, item.Type, item.Deadline, item.Blockers)
	}
	return tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	file := string(initiative.FileReadme)
	if len(args) == 2 {
		file = args[1]
	}
	content, err := openService().GetFile(cmd.Context(), args[0], file, directoryFlag)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), content.Content)
	return err
}

func runNew(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		normalized, err := slug.Normalize(newFlags.name)
		if err != nil {
			return fmt.Errorf("derive id from name: %w", err)
		}
		id = normalized
	}
	created, err := openService().CreateInitiative(cmd.Context(), initiative.CreateRequest{
		ID:        id,
		Name:      newFlags.name,
		Type:      newFlags.kind,
		Directory: directoryFlag,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created initiative %s\n", created)
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	note := strings.Join(args[1:], " ")
	if err := openService().AddNote(cmd.Context(), args[0], initiative.NoteRequest{Note: note, Directory: directoryFlag}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added note to %s\n", args[0])
	return nil
}

func runComm(cmd *cobra.Command, args []string) error {
	err := openService().AddComm(cmd.Context(), args[0], initiative.CommRequest{
		Channel:   commFlags.channel,
		Link:      commFlags.link,
		Context:   commFlags.context,
		Directory: directoryFlag,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s communication for %s\n", commFlags.channel, args[0])
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if setFlags.from == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(setFlags.from)
	}
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	content := string(raw)
	err = openService().ReplaceFile(cmd.Context(), args[0], args[1], initiative.ReplaceRequest{
		Content:   &content,
		Directory: directoryFlag,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of %s\n", args[1], args[0])
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	commits, err := openService().History(cmd.Context(), args[0], directoryFlag, historyFlags.limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(commits) == 0 {
		if !settings.History {
			fmt.Fprintln(out, "No history recorded. Run with --history or TRACKER_HISTORY=true to record changes.")
			return nil
		}
		fmt.Fprintln(out, "No history yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range commits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Hash, c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Message)
	}
	return tw.Flush()
}
