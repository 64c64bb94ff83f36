package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"filevault/btree"
	"filevault/huffman"
	"filevault/metadata"
	"filevault/rbtree"
	"filevault/search"
	"filevault/vault"
)

var (
	errColor  = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan, color.Bold)
)

type Cli struct {
	scanner *bufio.Scanner
	out     io.Writer
	vault   *vault.Vault
}

func NewCli(s *bufio.Scanner, out io.Writer, v *vault.Vault) *Cli {
	return &Cli{scanner: s, out: out, vault: v}
}

// Start reads commands until EXIT or the end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.processInput(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
}

func (c *Cli) printHelp() {
	fmt.Fprint(c.out, `
filevault CLI

Index is one of btree, rbtree or both; it defaults to the configured index.

Available Commands:
  COMPRESS <file> [index]          Compress a file and register its metadata
  DECOMPRESS <artifact> [output]   Restore a compressed file
  ANALYZE <file>                   Show symbol frequencies and entropy
  ADD <filename> <path> <size> [index]
                                   Register metadata without compressing
  GET <filename> [index]           Exact search
  FIND <term> [index]              Filenames containing term
  CATEGORY <name> [index]          Records tagged with a category
  TAG <filename> <category> [index]
                                   Add a category to a record
  DEL <filename> [index]           Remove a record
  RANGE <from> <to> [btree|rbtree] Records with filenames in [from, to]
  LS [btree|rbtree]                List every record
  TREE <btree|rbtree>              Draw an index
  TREE HUFFMAN <file>              Draw the Huffman tree and codes of a file
  SAVE                             Write index snapshots
  LOAD                             Replace the indexes with their snapshots
  HISTORY                          Recent searches
  HELP                             Show this message
  EXIT                             Terminate this session
`+"\n")
}

func (c *Cli) printPrompt() {
	fmt.Fprint(c.out, "> ")
}

func (c *Cli) fail(err error) {
	errColor.Fprintf(c.out, "Error: %v\n", err)
}

// processInput runs one command line and reports whether the session
// continues.
func (c *Cli) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]
	switch command {
	default:
		fmt.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "compress":
		c.processCompressCommand(args)
	case "decompress":
		c.processDecompressCommand(args)
	case "analyze":
		c.processAnalyzeCommand(args)
	case "add":
		c.processAddCommand(args)
	case "get":
		c.processGetCommand(args)
	case "find":
		c.processFindCommand(args)
	case "category":
		c.processCategoryCommand(args)
	case "tag":
		c.processTagCommand(args)
	case "del":
		c.processDeleteCommand(args)
	case "range":
		c.processRangeCommand(args)
	case "ls":
		c.processListCommand(args)
	case "tree":
		c.processTreeCommand(args)
	case "save":
		c.processSaveCommand()
	case "load":
		c.processLoadCommand()
	case "history":
		c.processHistoryCommand()
	case "help":
		c.printHelp()
	case "exit":
		return false
	}
	return true
}

// target parses an optional trailing index argument.
func (c *Cli) target(args []string, at int) (search.Source, bool) {
	if len(args) <= at {
		return c.vault.DefaultTarget(), true
	}
	src, ok := search.ParseSource(args[at])
	if !ok {
		fmt.Fprintf(c.out, "Unknown index \"%s\"\n", args[at])
	}
	return src, ok
}

func (c *Cli) processCompressCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: COMPRESS <file> [index]")
		return
	}
	target, ok := c.target(args, 1)
	if !ok {
		return
	}
	res, err := c.vault.CompressFile(args[0], "", target)
	if err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Compressed %s -> %s\n", res.Source, res.Artifact)
	fmt.Fprintf(c.out, "  %d -> %d bytes, ratio %.2f%%, indexed in %s\n",
		res.Stats.OriginalSize, res.Stats.CompressedSize, res.Stats.Ratio(), target)
}

func (c *Cli) processDecompressCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: DECOMPRESS <artifact> [output]")
		return
	}
	var dst string
	if len(args) == 2 {
		dst = args[1]
	}
	n, err := c.vault.DecompressFile(args[0], dst)
	if err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Restored %d bytes\n", n)
}

func (c *Cli) processAnalyzeCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: ANALYZE <file>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		c.fail(err)
		return
	}
	a := huffman.Summarize(huffman.Analyze(data))
	fmt.Fprintf(c.out, "Symbols: %d total, %d distinct\n", a.Total, a.Distinct)
	fmt.Fprintf(c.out, "Entropy: %.4f bits/symbol\n", a.Entropy)
	fmt.Fprintf(c.out, "Compression potential: %.2f%%\n", a.Potential)
	for i, s := range a.Symbols {
		if i == 10 {
			fmt.Fprintf(c.out, "  ... %d more\n", len(a.Symbols)-i)
			break
		}
		fmt.Fprintf(c.out, "  %-6s %8d  %6.2f%%\n", strconv.QuoteRune(rune(s.Symbol)), s.Count, s.Percent)
	}
}

func (c *Cli) processAddCommand(args []string) {
	if len(args) < 3 || len(args) > 4 {
		fmt.Fprintln(c.out, "Usage: ADD <filename> <path> <size> [index]")
		return
	}
	size, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid size \"%s\"\n", args[2])
		return
	}
	target, ok := c.target(args, 3)
	if !ok {
		return
	}
	if err := c.vault.Register(metadata.New(args[0], args[1], size), target); err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Added %s to %s\n", args[0], target)
}

func (c *Cli) printHits(hits []search.Hit, err error) {
	var ie *search.InconsistencyError
	if err != nil && !errors.As(err, &ie) {
		c.fail(err)
		return
	}
	if len(hits) == 0 {
		fmt.Fprintln(c.out, "No records found.")
	}
	for _, h := range hits {
		fmt.Fprintf(c.out, "%s  [%s, %s]\n", h.Record, h.Source, h.Latency)
	}
	if ie != nil {
		warnColor.Fprintf(c.out, "Warning: %v\n", ie)
	}
}

func (c *Cli) processGetCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: GET <filename> [index]")
		return
	}
	target, ok := c.target(args, 1)
	if !ok {
		return
	}
	c.printHits(c.vault.Coordinator().Search(args[0], target))
}

func (c *Cli) processFindCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: FIND <term> [index]")
		return
	}
	target, ok := c.target(args, 1)
	if !ok {
		return
	}
	c.printHits(c.vault.Coordinator().SearchPartial(args[0], target))
}

func (c *Cli) processCategoryCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: CATEGORY <name> [index]")
		return
	}
	target, ok := c.target(args, 1)
	if !ok {
		return
	}
	c.printHits(c.vault.Coordinator().SearchCategory(args[0], target))
}

func (c *Cli) processTagCommand(args []string) {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(c.out, "Usage: TAG <filename> <category> [index]")
		return
	}
	target, ok := c.target(args, 2)
	if !ok {
		return
	}
	var nf *metadata.KeyNotFoundError
	if err := c.vault.Tag(args[0], args[1], target); errors.As(err, &nf) {
		fmt.Fprintln(c.out, "Key not found.")
		return
	} else if err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Tagged %s with %s\n", args[0], args[1])
}

func (c *Cli) processDeleteCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: DEL <filename> [index]")
		return
	}
	target, ok := c.target(args, 1)
	if !ok {
		return
	}
	if !c.vault.Remove(args[0], target) {
		fmt.Fprintln(c.out, "Key not found.")
		return
	}
	okColor.Fprintf(c.out, "Deleted %s from %s\n", args[0], target)
}

// single parses an optional index argument that must name one tree.
func (c *Cli) single(args []string, at int) (search.Source, bool) {
	if len(args) <= at {
		return search.SourceBTree, true
	}
	src, ok := search.ParseSource(args[at])
	if !ok || src == search.SourceBoth {
		fmt.Fprintf(c.out, "Expected btree or rbtree, got \"%s\"\n", args[at])
		return 0, false
	}
	return src, true
}

func (c *Cli) processRangeCommand(args []string) {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(c.out, "Usage: RANGE <from> <to> [btree|rbtree]")
		return
	}
	src, ok := c.single(args, 2)
	if !ok {
		return
	}
	n := 0
	if src == search.SourceBTree {
		for rec := range c.vault.BTree().RangeQuery(args[0], args[1]).All() {
			fmt.Fprintln(c.out, rec)
			n++
		}
	} else {
		for rec := range c.vault.RBTree().Range(args[0], args[1]) {
			fmt.Fprintln(c.out, rec)
			n++
		}
	}
	fmt.Fprintf(c.out, "%d record(s)\n", n)
}

func (c *Cli) processListCommand(args []string) {
	if len(args) > 1 {
		fmt.Fprintln(c.out, "Usage: LS [btree|rbtree]")
		return
	}
	src, ok := c.single(args, 0)
	if !ok {
		return
	}
	all := c.vault.BTree().All()
	if src == search.SourceRBTree {
		all = c.vault.RBTree().All()
	}
	n := 0
	for rec := range all {
		fmt.Fprintln(c.out, rec)
		n++
	}
	fmt.Fprintf(c.out, "%d record(s) in %s\n", n, src)
}

func (c *Cli) processTreeCommand(args []string) {
	if len(args) == 2 && strings.EqualFold(args[0], "huffman") {
		data, err := os.ReadFile(args[1])
		if err != nil {
			c.fail(err)
			return
		}
		root := huffman.BuildTree(huffman.Analyze(data))
		if root == nil {
			fmt.Fprintln(c.out, "(empty)")
			return
		}
		fmt.Fprintln(c.out, root)
		fmt.Fprintln(c.out, huffman.NewCodeTable(root))
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: TREE <btree|rbtree> | TREE HUFFMAN <file>")
		return
	}
	src, ok := c.single(args, 0)
	if !ok {
		return
	}
	if src == search.SourceBTree {
		fmt.Fprintln(c.out, c.vault.BTree())
		fmt.Fprintln(c.out, (&btree.Visualizer{Tree: c.vault.BTree()}).Visualize())
		return
	}
	fmt.Fprintln(c.out, c.vault.RBTree())
	fmt.Fprintln(c.out, (&rbtree.Visualizer{Tree: c.vault.RBTree()}).Visualize())
}

func (c *Cli) processSaveCommand() {
	if err := c.vault.Save(); err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Saved %d btree and %d rbtree records\n",
		c.vault.BTree().Len(), c.vault.RBTree().Len())
}

func (c *Cli) processLoadCommand() {
	if err := c.vault.Load(); err != nil {
		c.fail(err)
		return
	}
	okColor.Fprintf(c.out, "Loaded %d btree and %d rbtree records\n",
		c.vault.BTree().Len(), c.vault.RBTree().Len())
}

func (c *Cli) processHistoryCommand() {
	history := c.vault.Coordinator().History()
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No searches yet.")
		return
	}
	for _, q := range history {
		fmt.Fprintf(c.out, "%s  %-8s %s in %s: %d hit(s)\n",
			q.At.Format("15:04:05"), q.Kind, keyColor.Sprint(q.Term), q.Sources, q.Hits)
	}
}
