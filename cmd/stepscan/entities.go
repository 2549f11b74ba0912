package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"stepscan/internal/diagfmt"
	"stepscan/internal/graph"
)

func newEntitiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities [flags] file.stp",
		Short: "List DATA entities with their attributes",
		Long: `Entities lists the entity table in file order. --type filters by entity type,
--resolve looks up one instance and, with --expect, checks its type`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntities(a, cmd, args[0])
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().StringSlice("type", nil, "only list entities of these types")
	cmd.Flags().Uint64("resolve", 0, "resolve one instance id")
	cmd.Flags().StringSlice("expect", nil, "expected types for --resolve")
	return cmd
}

func runEntities(a *app, cmd *cobra.Command, path string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	types, _ := cmd.Flags().GetStringSlice("type")
	resolveID, _ := cmd.Flags().GetUint64("resolve")
	expect, _ := cmd.Flags().GetStringSlice("expect")
	if len(expect) > 0 && resolveID == 0 {
		return usagef("--expect needs --resolve")
	}

	doc, err := a.load(cmd, path, true)
	if err != nil {
		return err
	}

	var entities []*graph.Entity
	switch {
	case resolveID != 0:
		e, err := doc.Table.ResolveTyped(resolveID, upperAll(expect)...)
		if err != nil {
			return err
		}
		entities = []*graph.Entity{e}
	case len(types) > 0:
		for _, t := range upperAll(types) {
			entities = append(entities, doc.Table.ByType(t)...)
		}
		sortByOffset(entities)
		// complex instances can match several requested types
		entities = slices.Compact(entities)
	default:
		entities = doc.Table.Entities()
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := diagfmt.WriteJSON(out, diagfmt.EntityOutputs(entities)); err != nil {
			return err
		}
	} else {
		diagfmt.FormatEntitiesPretty(out, entities)
		if !a.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d entities\n", len(entities), doc.Table.Len())
		}
	}
	return finish(doc.Bag)
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

// sortByOffset restores file order after merging several type buckets.
func sortByOffset(entities []*graph.Entity) {
	slices.SortFunc(entities, func(x, y *graph.Entity) int {
		return cmp.Compare(x.Span.Start, y.Span.Start)
	})
}
