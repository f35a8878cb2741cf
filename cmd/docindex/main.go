// Package main is docindex's operator CLI, grounded on cmd/smf/main.go's
// cobra wiring: a rootCmd with one subcommand per operation, each built
// from a flags struct and registered via cmd.Flags().StringVarP, plus
// the teacher's printInfo/writeOutput dispatch pattern for routing a
// command's result between stdout and a file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docindex/internal/config"
	"docindex/internal/indexer"
	"docindex/internal/output"
	"docindex/internal/schema"
	"docindex/internal/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docindex",
		Short: "Schema-driven document indexing engine",
	}

	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(storageCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type indexFlags struct {
	docFile    string
	schemaFile string
	volumeFile string
	configFile string
	id         string
	format     string
	outFile    string
}

func indexCmd() *cobra.Command {
	flags := &indexFlags{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index a JSON document through the schema engine",
		Long: `Reads a JSON document, resolves its effective specification path by
path against the schema stored at --schema (bootstrapping a fresh schema
if the file doesn't exist yet), and prints the terms the document
produced along with the number of value slots and geo slots it filled.
The schema file is updated in place with
whatever new paths the document introduced.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runIndex(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.docFile, "doc", "d", "", "Path to the JSON document to index (required)")
	cmd.Flags().StringVarP(&flags.schemaFile, "schema", "s", "schema.toml", "Path to the schema TOML file")
	cmd.Flags().StringVarP(&flags.volumeFile, "volume", "v", "", "Path to a storage volume for large text/string overflow (optional)")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to an engine configuration TOML file (default: built-in defaults)")
	cmd.Flags().StringVar(&flags.id, "id", "", "Explicit document id (default: auto-generated)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: text or json")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runIndex(flags *indexFlags) error {
	if flags.docFile == "" {
		return fmt.Errorf("--doc is required")
	}

	raw, err := os.ReadFile(flags.docFile)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	cfg := config.Default()
	if flags.configFile != "" {
		cfg, err = config.LoadFile(flags.configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	engine, err := schema.LoadEngineFile(flags.schemaFile, cfg.Strict)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	var vol *storage.Volume
	if flags.volumeFile != "" {
		vol, err = storage.Open(flags.volumeFile, cfg.Storage.SyncMode, nil)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer func() { _ = vol.Close() }()
	}

	driver := indexer.New(engine, nil, vol)
	driver.SetGlobalAccuracy(cfg.Accuracy)
	handler := indexer.NewRecordingHandler()

	var id any
	if flags.id != "" {
		id = flags.id
	}

	termID, _, dataObject, err := driver.Index(context.Background(), doc, id, handler)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	if err := engine.SaveFile(flags.schemaFile); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}

	result := &output.IndexResult{
		TermID:     termID,
		Document:   doc,
		DataObject: dataObject,
		ValueSlots: len(handler.Values),
		GeoSlots:   len(handler.Geo),
	}
	for _, t := range handler.Terms {
		result.Terms = append(result.Terms, output.TermRecord{Prefix: t.Prefix, Term: t.Term, BoolTerm: t.BoolTerm})
	}

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatIndexResult(result)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	return writeOutput(formatted, flags.outFile, flags.format)
}

type schemaShowFlags struct {
	schemaFile string
	format     string
	outFile    string
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect a persisted schema",
	}
	cmd.AddCommand(schemaShowCmd())
	return cmd
}

func schemaShowCmd() *cobra.Command {
	flags := &schemaShowFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective persisted schema tree",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSchemaShow(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.schemaFile, "schema", "s", "schema.toml", "Path to the schema TOML file")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: text or json")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func runSchemaShow(flags *schemaShowFlags) error {
	engine, err := schema.LoadEngineFile(flags.schemaFile, false)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	tree := &output.SchemaTree{}
	for _, path := range engine.Paths() {
		props, ok := engine.Get(path)
		if !ok {
			continue
		}
		tree.Paths = append(tree.Paths, output.PathSpec{
			Path:     path,
			Concrete: string(props.SepTypes.Concrete),
			Slot:     props.Slot,
			Index:    indexBitsString(props.Index),
			Store:    props.Flags.Store,
			Dynamic:  props.Flags.Dynamic,
		})
	}

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatSchemaTree(tree)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	return writeOutput(formatted, flags.outFile, flags.format)
}

func indexBitsString(b schema.IndexBits) string {
	var parts []string
	if b.Has(schema.FieldTerms) {
		parts = append(parts, "field_terms")
	}
	if b.Has(schema.FieldValues) {
		parts = append(parts, "field_values")
	}
	if b.Has(schema.GlobalTerms) {
		parts = append(parts, "global_terms")
	}
	if b.Has(schema.GlobalValues) {
		parts = append(parts, "global_values")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

func storageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and exercise a storage volume",
	}
	cmd.AddCommand(storageDumpCmd())
	cmd.AddCommand(storagePackCmd())
	cmd.AddCommand(storageUnpackCmd())
	return cmd
}

type storageDumpFlags struct {
	volumeFile string
	format     string
	outFile    string
}

func storageDumpCmd() *cobra.Command {
	flags := &storageDumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "List every record in a storage volume",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStorageDump(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.volumeFile, "volume", "v", "", "Path to the storage volume file (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: text or json")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func runStorageDump(flags *storageDumpFlags) error {
	if flags.volumeFile == "" {
		return fmt.Errorf("--volume is required")
	}

	vol, err := storage.Open(flags.volumeFile, storage.NoSync, nil)
	if err != nil {
		return fmt.Errorf("open volume: %w", err)
	}
	defer func() { _ = vol.Close() }()

	dump := &output.StorageDump{Path: flags.volumeFile}
	offset := uint64(storage.BlockSize)
	end := vol.Offset()
	for offset < end {
		hdr, err := vol.PeekHeader(offset)
		if err != nil {
			return fmt.Errorf("read record at %d: %w", offset, err)
		}
		dump.Records = append(dump.Records, output.StorageRecord{
			Offset:       offset,
			FramedLength: hdr.FramedLength,
			Deleted:      hdr.Deleted,
			Compressed:   hdr.Compressed,
		})
		offset += uint64(hdr.FramedLength)
	}

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatStorageDump(dump)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	return writeOutput(formatted, flags.outFile, flags.format)
}

type storagePackFlags struct {
	volumeFile string
	inFile     string
}

func storagePackCmd() *cobra.Command {
	flags := &storagePackFlags{}
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Write a file's bytes into a storage volume as a new record",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStoragePack(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.volumeFile, "volume", "v", "", "Path to the storage volume file (required)")
	cmd.Flags().StringVarP(&flags.inFile, "in", "i", "", "Path to the file whose bytes to pack (required)")
	return cmd
}

func runStoragePack(flags *storagePackFlags) error {
	if flags.volumeFile == "" || flags.inFile == "" {
		return fmt.Errorf("--volume and --in are required")
	}
	payload, err := os.ReadFile(flags.inFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	vol, err := storage.Open(flags.volumeFile, storage.DefaultSync, nil)
	if err != nil {
		return fmt.Errorf("open volume: %w", err)
	}
	defer func() { _ = vol.Close() }()

	offset, err := vol.Write(payload)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	fmt.Printf("wrote %d byte(s) at offset %d\n", len(payload), offset)
	return nil
}

type storageUnpackFlags struct {
	volumeFile string
	offset     uint64
	outFile    string
}

func storageUnpackCmd() *cobra.Command {
	flags := &storageUnpackFlags{}
	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Read a record back out of a storage volume",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStorageUnpack(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.volumeFile, "volume", "v", "", "Path to the storage volume file (required)")
	cmd.Flags().Uint64VarP(&flags.offset, "offset", "O", 0, "Record start offset, as printed by pack or dump")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func runStorageUnpack(flags *storageUnpackFlags) error {
	if flags.volumeFile == "" {
		return fmt.Errorf("--volume is required")
	}

	vol, err := storage.Open(flags.volumeFile, storage.NoSync, nil)
	if err != nil {
		return fmt.Errorf("open volume: %w", err)
	}
	defer func() { _ = vol.Close() }()

	payload, err := vol.Read(flags.offset)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	if flags.outFile == "" {
		os.Stdout.Write(payload)
		return nil
	}
	if err := os.WriteFile(flags.outFile, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("wrote %d byte(s) to %s\n", len(payload), flags.outFile)
	return nil
}

func printInfo(format, msg string) {
	if strings.EqualFold(strings.TrimSpace(format), string(output.FormatJSON)) {
		fmt.Fprintln(os.Stderr, msg)
		return
	}
	fmt.Println(msg)
}

func writeOutput(content, outFile, format string) error {
	if outFile == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printInfo(format, fmt.Sprintf("output saved to %s", outFile))
	return nil
}
