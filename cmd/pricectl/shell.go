package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pricedesk/internal/commit"
	"pricedesk/internal/desk"
	"pricedesk/internal/dto"
	"pricedesk/internal/export"
	"pricedesk/internal/pricing"
)

const pageSize = 25

const shellHelp = `commands:
  load [category [search...]]          reload from the store
  view [category [search...]]          filter the loaded rows
  list [page]                          show visible rows (* selected, ~ modified)
  select all | <part>...               select all visible rows, or parts by id / part no
  unselect <part>...                   drop parts from the selection
  clear                                empty the selection
  bulk <field> <type> <value> <reason...>     stage a revision on the selection
  bulk-staged <field> <type> <value> <reason...>  same, compounding on staged values
  set <part> <field> <value>           stage one value
  summary                              totals for the loaded rows
  export <csv|xlsx> <path>             write the visible rows
  commit [reason...]                   push every modified row
  reset                                discard all staged edits
  history [page]                       revision log
  quit`

// shell is the interactive front end of a workbench. View filter and page live
// here; the workbench only sees the visible ids on select-all.
type shell struct {
	w        *desk.Workbench
	out      io.Writer
	search   string
	category string
}

func newShell(w *desk.Workbench, out io.Writer) *shell {
	return &shell{w: w, out: out, category: pricing.CategoryAll}
}

// Run reads commands until EOF or quit. Command errors are printed, not returned.
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for sc.Scan() {
		args := strings.Fields(sc.Text())
		if len(args) > 0 {
			if args[0] == "quit" || args[0] == "exit" {
				return nil
			}
			if err := s.exec(ctx, args[0], args[1:]); err != nil {
				fmt.Fprintln(s.out, "error:", err)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(s.out, "> ")
	}
	return sc.Err()
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "load":
		category, search := splitFilter(args)
		if err := s.w.Load(ctx, dto.PriceItemFilter{Category: category, Search: search}); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "loaded %d parts\n", len(s.w.Items()))
	case "view":
		s.category, s.search = splitFilter(args)
		fmt.Fprintf(s.out, "%d visible\n", len(s.visible()))
	case "list":
		return s.list(args)
	case "select":
		if len(args) == 1 && args[0] == "all" {
			s.w.SelectAllVisible(s.search, s.category)
			fmt.Fprintf(s.out, "%d selected\n", len(s.w.Selection()))
			return nil
		}
		return s.toggle(args, true)
	case "unselect":
		return s.toggle(args, false)
	case "clear":
		s.w.ClearSelection()
	case "bulk", "bulk-staged":
		return s.bulk(cmd == "bulk-staged", args)
	case "set":
		if len(args) != 3 {
			return errors.New("usage: set <part> <field> <value>")
		}
		id, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		return s.w.SetStagedValue(id, pricing.Field(args[1]), args[2])
	case "summary":
		printSummary(s.out, s.w.Summary())
	case "export":
		if len(args) != 2 {
			return errors.New("usage: export <csv|xlsx> <path>")
		}
		f, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}
		return writeExportFile(args[1], f, s.visible())
	case "commit":
		res, err := s.w.Commit(ctx, joinArgs(args))
		if errors.Is(err, commit.ErrNothingToCommit) {
			fmt.Fprintln(s.out, "nothing to commit")
			return nil
		}
		if res != nil {
			printResult(s.out, res)
		}
		var partial *commit.PartialCommitError
		if errors.As(err, &partial) {
			fmt.Fprintln(s.out, "failed rows stay modified; run commit again to retry them")
			return nil
		}
		return err
	case "reset":
		s.w.Reset()
		fmt.Fprintln(s.out, "all staged edits discarded")
	case "history":
		page := 1
		if len(args) > 0 {
			page, _ = strconv.Atoi(args[0])
		}
		resp, err := s.w.History(ctx, page, 20)
		if err != nil {
			return err
		}
		printHistory(s.out, resp)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (s *shell) visible() []*pricing.PriceItem {
	return s.w.Visible(s.search, s.category)
}

func (s *shell) list(args []string) error {
	page := 1
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil || p < 1 {
			return fmt.Errorf("bad page %q", args[0])
		}
		page = p
	}
	rows := s.visible()
	selected := make(map[string]bool)
	for _, id := range s.w.Selection() {
		selected[id] = true
	}
	printItems(s.out, pricing.Page(rows, page, pageSize), func(id string) bool { return selected[id] })
	fmt.Fprintf(s.out, "page %d of %d\n", page, max(1, pricing.TotalPages(len(rows), pageSize)))
	return nil
}

func (s *shell) toggle(refs []string, included bool) error {
	if len(refs) == 0 {
		return errors.New("no parts given")
	}
	for _, ref := range refs {
		id, err := s.resolve(ref)
		if err != nil {
			return err
		}
		s.w.Toggle(id, included)
	}
	fmt.Fprintf(s.out, "%d selected\n", len(s.w.Selection()))
	return nil
}

func (s *shell) bulk(staged bool, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: bulk <field> <percentage|fixed> <value> <reason...>")
	}
	req := pricing.BulkRevisionRequest{
		Field:     pricing.Field(args[0]),
		Kind:      pricing.TransformKind(args[1]),
		Magnitude: args[2],
		Reason:    joinArgs(args[3:]),
	}
	if staged {
		req.Baseline = pricing.BaselineStaged
	}
	if err := s.w.ApplyBulkRevision(req); err != nil {
		return err
	}
	printSummary(s.out, s.w.Summary())
	return nil
}

// resolve accepts an item id or a part number (case-insensitive).
func (s *shell) resolve(ref string) (string, error) {
	for _, it := range s.w.Items() {
		if it.ID == ref || strings.EqualFold(it.PartNo, ref) {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", pricing.ErrUnknownItem, ref)
}

func splitFilter(args []string) (category, search string) {
	category = pricing.CategoryAll
	if len(args) > 0 {
		category = args[0]
	}
	if len(args) > 1 {
		search = joinArgs(args[1:])
	}
	return category, search
}
