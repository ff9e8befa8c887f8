package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "opinion",
		Short: "Opinion target and polarity annotation",
		Long: `Opinion annotates tokenised documents with opinions.

It runs two passes over each document:
  - ote: find opinion targets and create one opinion per target
  - pol: tag dictionary sentiments and classify opinion polarity

Documents are JSON files, or raw text files ending in .txt. With no
files the document is read from standard input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(oteCmd())
	rootCmd.AddCommand(polCmd())
	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(spansCmd())
	rootCmd.AddCommand(lexiconCmd())
	rootCmd.AddCommand(runsCmd())
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "YAML file of annotation properties")
	f.StringArray("set", nil, "Property assignment key=value (repeatable, overrides --config)")
	f.Bool("verbose", false, "Development logging at debug level")
	f.String("ledger", "", "SQLite ledger file recording runs and opinions")
	f.String("lexicon", "", "Use a dictionary stored in the ledger under this name")
	f.Int("jobs", 4, "Documents processed concurrently")
	f.Bool("slim", false, "Emit a slim opinion summary instead of the full document")
	f.String("out", "", "Write one <id>.json per document into this directory")
	f.Bool("text", false, "Treat standard input as raw text")
}

func passCmd(use, short, long, pass string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [files...]",
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			defer r.Close()
			return r.run(cmd.Context(), pass, args)
		},
	}
}

func oteCmd() *cobra.Command {
	return passCmd("ote", "Extract opinion targets",
		`Label opinion targets sentence by sentence and add one opinion per
resolved span. Overlapping spans are resolved before opinions are created.

Example:
  opinion ote review.json
  opinion ote --set targets=aspects.tsv --set dedupe=yes reviews/*.json`,
		passTargets)
}

func polCmd() *cobra.Command {
	return passCmd("pol", "Assign opinion polarity",
		`Tag dictionary sentiments and classify the polarity of every opinion.
Documents without opinions get one opinion per sentence.

Example:
  opinion pol --set dictionary=general.tsv --set windowMin=2 --set windowMax=2 review.json`,
		passPolarity)
}

func annotateCmd() *cobra.Command {
	return passCmd("annotate", "Run target extraction then polarity assignment",
		`Run both passes over each document.

Example:
  opinion annotate --slim review.txt
  opinion annotate --ledger runs.db --lexicon general --jobs 8 reviews/*.json`,
		passBoth)
}

func spansCmd() *cobra.Command {
	return passCmd("spans", "Print labeler spans in OpenNLP markup",
		`Print each sentence with its resolved target spans inline,
<START:OTE> like this <END>. Documents are not modified.`,
		passSpans)
}

func lexiconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage dictionaries stored in the ledger",
	}
	cmd.AddCommand(lexiconImportCmd())
	cmd.AddCommand(lexiconListCmd())
	return cmd
}

func lexiconImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dictionary-file>",
		Short: "Import a polarity dictionary into the ledger",
		Long: `Import a term<TAB>label dictionary file into the ledger. The lexicon
is stored under the file's base name unless --name is given, replacing
any lexicon of the same name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer ledger.Close()

			n, err := importLexicon(ledger, args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Lexicon name (default: file base name)")
	return cmd
}

func lexiconListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lexicons stored in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer ledger.Close()

			names, err := ledger.ListLexicons()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs [doc-id]",
		Short: "List recorded runs and their opinions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer ledger.Close()

			docID := ""
			if len(args) > 0 {
				docID = args[0]
			}
			runs, err := ledger.ListRuns(docID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, run := range runs {
				fmt.Fprintf(w, "%s  %-8s %-20s opinions=%d sentiments=%d problems=%d\n",
					run.ID, run.Pass, run.DocID, run.Opinions, run.Sentiments, run.Problems)
			}
			if docID == "" {
				return nil
			}
			recs, err := ledger.ListOpinions(docID)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				fmt.Fprintf(w, "  %s s%d %q %s %s\n", rec.ID, rec.Sentence, rec.Target, rec.Category, rec.Polarity)
			}
			return nil
		},
	}
}
