package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kittclouds/opinion/internal/store"
	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/docstore"
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/lexicon"
	"github.com/kittclouds/opinion/pkg/pool"
	"github.com/kittclouds/opinion/pkg/response"
	"github.com/kittclouds/opinion/pkg/scanner/conductor"
)

const (
	passTargets  = store.PassTargets
	passPolarity = store.PassPolarity
	passBoth     = store.PassBoth
	passSpans    = "spans"
)

// runner processes a batch of documents with pooled conductors.
type runner struct {
	logger *zap.Logger
	opts   config.Options
	pool   *pool.Pool
	ledger *store.SQLiteStore // nil without --ledger
	dict   lexicon.Tagger     // shared by every conductor

	jobs   int
	slim   bool
	text   bool
	outDir string
	stdout io.Writer
	stdin  io.Reader
}

func newRunner(cmd *cobra.Command) (*runner, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jobs, _ := cmd.Flags().GetInt("jobs")
	slim, _ := cmd.Flags().GetBool("slim")
	text, _ := cmd.Flags().GetBool("text")
	outDir, _ := cmd.Flags().GetString("out")
	lexName, _ := cmd.Flags().GetString("lexicon")

	logger, err := newLogger(verbose)
	if err != nil {
		return nil, err
	}

	props, err := loadProperties(cmd)
	if err != nil {
		return nil, err
	}

	r := &runner{
		logger: logger,
		jobs:   max(jobs, 1),
		slim:   slim,
		text:   text,
		outDir: outDir,
		stdout: cmd.OutOrStdout(),
		stdin:  cmd.InOrStdin(),
	}

	if path, _ := cmd.Flags().GetString("ledger"); path != "" {
		if r.ledger, err = store.NewSQLiteStoreWithDSN(path); err != nil {
			return nil, err
		}
	}

	if lexName != "" {
		if r.ledger == nil {
			r.Close()
			return nil, fmt.Errorf("--lexicon requires --ledger")
		}
		d, err := r.ledger.LoadLexicon(lexName)
		if err != nil {
			r.Close()
			return nil, err
		}
		if d == nil {
			r.Close()
			return nil, &config.ResourceError{Resource: "ledger lexicon " + lexName, Err: os.ErrNotExist}
		}
		props[config.KeyDictionary] = lexName
		r.dict = d
	}

	if r.opts, err = config.Parse(props); err != nil {
		r.Close()
		return nil, err
	}
	if r.dict == nil && r.opts.DictionaryEnabled() {
		d, err := lexicon.LoadDictionary(r.opts.Dictionary)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.dict = d
	}

	r.pool = pool.New(r.jobs, r.newConductor)
	return r, nil
}

func (r *runner) newConductor() (*conductor.Conductor, error) {
	options := []conductor.Option{conductor.WithLogger(r.logger)}
	if r.dict != nil {
		options = append(options, conductor.WithDictionary(r.dict))
	}
	return conductor.New(r.opts, options...)
}

// Close flushes the logger and closes the ledger.
func (r *runner) Close() {
	if r.ledger != nil {
		r.ledger.Close()
	}
	_ = r.logger.Sync()
}

// run loads the inputs and applies pass to each of them.
func (r *runner) run(ctx context.Context, pass string, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Build one conductor up front so configuration errors surface before
	// any document is read.
	c, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	r.pool.Put(c)

	docs, err := r.load(paths)
	if err != nil {
		return err
	}
	if r.outDir != "" {
		if err := os.MkdirAll(r.outDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", r.outDir, err)
		}
	}

	ids := docs.AllIDs()
	outputs := make([][]byte, len(ids))
	errs := make([]error, len(ids))

	sem := semaphore.NewWeighted(int64(r.jobs))
	var wg sync.WaitGroup
	for i, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		go func(i int, entry *docstore.Entry) {
			defer wg.Done()
			defer sem.Release(1)
			outputs[i], errs[i] = r.process(ctx, pass, entry)
		}(i, docs.Get(id))
	}
	wg.Wait()

	if r.outDir == "" {
		for _, out := range outputs {
			if out == nil {
				continue
			}
			if _, err := r.stdout.Write(out); err != nil {
				return err
			}
		}
	}

	r.logger.Info("batch complete",
		zap.String("pass", pass),
		zap.Int("documents", len(ids)),
		zap.Int("conductors", r.pool.Created()))
	return errors.Join(errs...)
}

// load reads every path into a docstore, or standard input without paths.
func (r *runner) load(paths []string) (*docstore.Store, error) {
	docs := docstore.New()
	if len(paths) == 0 {
		var (
			doc *document.Document
			err error
		)
		if r.text {
			var data []byte
			if data, err = io.ReadAll(r.stdin); err == nil {
				doc, err = document.FromText("stdin", r.opts.Language, string(data), nil)
			}
		} else {
			doc, err = document.Read(r.stdin)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		docs.Upsert(entryID(doc.ID), "", doc)
		return docs, nil
	}

	for _, path := range paths {
		if _, err := docs.LoadFile(path, r.opts.Language); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// process runs one pass over the entry's document on a pooled conductor and
// renders the result. Output is returned even when the pass fails part way.
func (r *runner) process(ctx context.Context, pass string, entry *docstore.Entry) ([]byte, error) {
	doc := entry.Doc
	c, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(c)

	log := r.logger.With(zap.String("doc", entry.ID), zap.String("pass", pass))
	start := time.Now()

	if pass == passSpans {
		out, err := c.Spans(doc)
		if err != nil {
			log.Error("labeling failed", zap.Error(err))
			return nil, fmt.Errorf("%s: %w", entry.ID, err)
		}
		return r.write(entry.ID, ".txt", []byte(out+"\n"))
	}

	var rep conductor.Report
	switch pass {
	case passTargets:
		rep, err = c.ExtractTargets(doc)
	case passPolarity:
		rep, err = c.AssignPolarity(doc)
	default:
		rep, err = c.Annotate(doc)
	}
	elapsed := time.Since(start)

	var failures []error
	if err != nil {
		log.Error("pass aborted", zap.Error(err))
		failures = append(failures, fmt.Errorf("%s: %w", entry.ID, err))
	}
	for _, p := range rep.Problems {
		log.Warn("opinion skipped", zap.Error(p))
	}
	if perr := rep.Err(); perr != nil {
		failures = append(failures, fmt.Errorf("%s: %w", entry.ID, perr))
	}

	if r.ledger != nil {
		if lerr := r.record(pass, doc, rep, start); lerr != nil {
			log.Error("ledger write failed", zap.Error(lerr))
			failures = append(failures, lerr)
		}
	}

	var out []byte
	var merr error
	if r.slim {
		out, merr = response.MarshalSlimResponse(doc, elapsed.Microseconds())
	} else {
		var s string
		s, merr = doc.ToExternalFormat()
		out = []byte(s)
	}
	if merr != nil {
		return nil, errors.Join(append(failures, merr)...)
	}
	out = append(out, '\n')

	out, werr := r.write(entry.ID, ".json", out)
	return out, errors.Join(append(failures, werr)...)
}

// write stores out under the output directory, or hands it back for
// standard output. id is a docstore entry id, unique within the batch.
func (r *runner) write(id, ext string, out []byte) ([]byte, error) {
	if r.outDir == "" {
		return out, nil
	}
	path := filepath.Join(r.outDir, id+ext)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil, nil
}

func (r *runner) record(pass string, doc *document.Document, rep conductor.Report, start time.Time) error {
	run := &store.Run{
		Pass:       pass,
		DocID:      doc.ID,
		Opinions:   rep.Created,
		Sentiments: rep.Sentiments,
		Problems:   len(rep.Problems),
		StartedAt:  start.UnixMilli(),
	}
	if r.dict != nil && pass != passTargets {
		run.Resource = r.dict.Name()
	}
	if err := r.ledger.RecordRun(run); err != nil {
		return err
	}
	return r.ledger.RecordOpinions(run.ID, doc.ID, response.FromDocument(doc).Opinions)
}

// entryID returns id when it is usable as an output file name, else "stdin".
func entryID(id string) string {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "stdin"
	}
	return id
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadProperties merges the --config file and --set assignments.
func loadProperties(cmd *cobra.Command) (config.Properties, error) {
	props := config.Properties{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		fileProps, err := config.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		props.Merge(fileProps)
	}
	sets, _ := cmd.Flags().GetStringArray("set")
	for _, s := range sets {
		if err := props.Set(s); err != nil {
			return nil, err
		}
	}
	return props, nil
}

func openLedger(cmd *cobra.Command) (*store.SQLiteStore, error) {
	path, _ := cmd.Flags().GetString("ledger")
	if path == "" {
		return nil, fmt.Errorf("--ledger flag is required")
	}
	return store.NewSQLiteStoreWithDSN(path)
}

// importLexicon copies a dictionary file into the ledger.
func importLexicon(ledger store.Storer, path, name string) (int, error) {
	d, err := lexicon.LoadDictionary(path)
	if err != nil {
		return 0, err
	}
	if name == "" {
		name = d.Name()
	}
	return ledger.ImportLexicon(name, d.Entries())
}
