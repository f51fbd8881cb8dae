// Command rsmlcat dumps and replays a range-server metalog (RSML) file,
// the operational tool component N adds: an offline way to inspect what
// master_gc's peers produce without attaching a debugger to a live range
// server.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ghemawat/stream"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/metalog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rsmlcat",
		Short: "Inspect range-server metalog (RSML) files",
	}
	root.AddCommand(newDumpCmd(), newStatesCmd(), newArchiveCmd())
	return root
}

func newDumpCmd() *cobra.Command {
	var grep string
	cmd := &cobra.Command{
		Use:   "dump <path>",
		Short: "Print every entry in a metalog file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			r, err := metalog.NewReader(dfs.Default, path)
			if err != nil {
				return err
			}
			defer r.Close()

			var buf bytes.Buffer
			for {
				re, err := r.Read()
				if err != nil {
					return err
				}
				if re == nil {
					break
				}
				fmt.Fprintf(&buf, "%d\t%s\ttable=%d/%d\trange=[%s, %s]\n",
					re.Timestamp, re.Entry.Type(),
					re.Entry.Table().ID, re.Entry.Table().Generation,
					re.Entry.Range().StartRow, re.Entry.Range().EndRow)
			}

			return printFiltered(cmd.OutOrStdout(), &buf, grep)
		},
	}
	cmd.Flags().StringVar(&grep, "grep", "", "only print lines matching this regexp")
	return cmd
}

func newStatesCmd() *cobra.Command {
	var grep string
	cmd := &cobra.Command{
		Use:   "states <path>",
		Short: "Print the folded RangeStateInfo set for a metalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			r, err := metalog.NewReader(dfs.Default, path)
			if err != nil {
				return err
			}
			defer r.Close()

			states, err := r.LoadRangeStates(false)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			for _, s := range states {
				fmt.Fprintf(&buf, "table=%d/%d\trange=[%s, %s]\tsoft_limit=%d\ttimestamp=%d\tpending_transactions=%d\n",
					s.Table.ID, s.Table.Generation, s.Range.StartRow, s.Range.EndRow,
					s.SoftLimit, s.Timestamp, len(s.Transactions))
			}

			return printFiltered(cmd.OutOrStdout(), &buf, grep)
		},
	}
	cmd.Flags().StringVar(&grep, "grep", "", "only print lines matching this regexp")
	return cmd
}

func newArchiveCmd() *cobra.Command {
	var unarchive bool
	cmd := &cobra.Command{
		Use:   "archive <path>",
		Short: "Compress (or, with --decompress, decompress) a metalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unarchive {
				return metalog.Unarchive(dfs.Default, args[0])
			}
			return metalog.Archive(dfs.Default, args[0])
		},
	}
	cmd.Flags().BoolVar(&unarchive, "decompress", false, "decompress an archived metalog instead of archiving it")
	return cmd
}

// printFiltered writes src to w, optionally piped through a ghemawat/stream
// Grep filter — the same composable line-filtering idiom pebble's own
// command-line tools use for log inspection.
func printFiltered(w io.Writer, src io.Reader, pattern string) error {
	if pattern == "" {
		_, err := io.Copy(w, src)
		return err
	}

	var lines []string
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return stream.Run(stream.Items(lines...), stream.Grep(pattern), stream.ForEach(func(line string) {
		fmt.Fprintln(w, line)
	}))
}
