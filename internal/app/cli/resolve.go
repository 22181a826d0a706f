package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	filtermapper "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/http/mapper"
	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	filterstypes "github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
)

type resolveOptions struct {
	screen    string
	species   []int64
	breeds    []int64
	ageRanges []int64
	states    []int64
	cities    []int64
	ages      map[string]string
	favorites bool
	search    string
	commit    bool
	ordering  string
}

func newResolveCmd() *cobra.Command {
	o := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Open a filter screen, apply selections and print the resolved lists",
		Example: "  petfilter resolve --species 1 --breed 1 --age-range 2 --age 2=3 --commit\n" +
			"  petfilter resolve --screen my-pets --state 35 --city 3550308 -o json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			return runResolve(cmd, rt, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.screen, "screen", filtersapp.PetListingScreen.Name, "filter screen (pet-listing, my-pets)")
	f.Int64SliceVar(&o.species, "species", nil, "species ids to select")
	f.Int64SliceVar(&o.breeds, "breed", nil, "breed ids to select")
	f.Int64SliceVar(&o.ageRanges, "age-range", nil, "age range ids to select")
	f.Int64SliceVar(&o.states, "state", nil, "state ids to select")
	f.Int64SliceVar(&o.cities, "city", nil, "city ids to select")
	f.StringToStringVar(&o.ages, "age", nil, "specific age per age range, as id=age")
	f.BoolVar(&o.favorites, "favorites", false, "only show favorite pets")
	f.StringVar(&o.search, "search", "", "search pets by name")
	f.BoolVar(&o.commit, "commit", false, "persist the resulting query")
	f.StringVar(&o.ordering, "ordering", "latest-trigger", "overlapping cascade policy (latest-trigger, last-completion)")
	return cmd
}

func runResolve(cmd *cobra.Command, rt *runtime, o *resolveOptions) error {
	ctx := cmd.Context()
	ordering, err := filtersapp.ParseOrdering(o.ordering)
	if err != nil {
		return err
	}
	manager := filtersapp.NewManager(
		rt.catalog,
		rt.prefs.Store,
		filtersapp.WithLogger(rt.logger),
		filtersapp.WithUserResolver(rt.prefs.Users),
		filtersapp.WithOrdering(ordering),
	)
	snapshot, err := manager.Open(ctx, filterstypes.OpenSessionInput{Screen: o.screen})
	if err != nil {
		return err
	}
	ref := filterstypes.SessionRef{SessionID: snapshot.ID}
	defer func() { _ = manager.Close(ctx, ref) }()

	steps := []struct {
		domain string
		ids    []int64
	}{
		{filterstypes.DomainSpecies, o.species},
		{filterstypes.DomainBreed, o.breeds},
		{filterstypes.DomainAgeRange, o.ageRanges},
		{filterstypes.DomainState, o.states},
		{filterstypes.DomainCity, o.cities},
	}
	for _, step := range steps {
		for _, id := range step.ids {
			if _, err := manager.Toggle(ctx, filterstypes.ToggleInput{SessionRef: ref, Domain: step.domain, ID: id}); err != nil {
				return err
			}
		}
	}
	ages, err := parseAges(o.ages)
	if err != nil {
		return err
	}
	for _, a := range ages {
		if _, err := manager.SetSpecificAge(ctx, filterstypes.SpecificAgeInput{SessionRef: ref, AgeRangeID: a.id, Text: a.text}); err != nil {
			return err
		}
	}
	if o.favorites {
		if _, err := manager.ToggleOnlyFavorites(ctx, ref); err != nil {
			return err
		}
	}
	if strings.TrimSpace(o.search) != "" {
		if _, err := manager.Search(ctx, filterstypes.SearchInput{SessionRef: ref, Text: o.search}); err != nil {
			return err
		}
	}
	snapshot, err = manager.Get(ctx, ref)
	if err != nil {
		return err
	}

	var committed *filterstypes.CommitResult
	var commitErr error
	if o.commit {
		committed, commitErr = manager.Commit(ctx, ref)
	}
	if err := printResolution(cmd.OutOrStdout(), rt.opts.OutputFormat, snapshot, committed); err != nil {
		return err
	}
	return commitErr
}

type ageEntry struct {
	id   int64
	text string
}

func parseAges(raw map[string]string) ([]ageEntry, error) {
	out := make([]ageEntry, 0, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid age range id %q", key)
		}
		out = append(out, ageEntry{id: id, text: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

type resolution struct {
	Session filtermapper.Session `json:"session"`
	Commit  *filtermapper.Commit `json:"commit,omitempty"`
}

func printResolution(w io.Writer, format string, snapshot *filterstypes.SessionSnapshot, committed *filterstypes.CommitResult) error {
	out := resolution{Session: filtermapper.FromSnapshot(snapshot)}
	if committed != nil {
		c := filtermapper.FromCommit(committed)
		out.Commit = &c
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	s := out.Session
	fmt.Fprintf(w, "screen: %s\n", s.Screen)
	printOptions(w, "species", s.Species)
	printOptions(w, "breeds", s.Breeds)
	printOptions(w, "age ranges", s.AgeRanges)
	printOptions(w, "states", s.States)
	printOptions(w, "cities", s.Cities)
	if s.OnlyFavorites {
		fmt.Fprintf(w, "favorites: only (%d)\n", s.FavoritesCount)
	}
	if s.SearchText != "" {
		names := make([]string, 0, len(s.SearchResults))
		for _, pet := range s.SearchResults {
			names = append(names, fmt.Sprintf("%d %s", pet.ID, pet.Name))
		}
		fmt.Fprintf(w, "search %q: %s\n", s.SearchText, strings.Join(names, ", "))
	}
	for _, alert := range s.Alerts {
		fmt.Fprintf(w, "warning: %s\n", alert.Message)
	}
	if out.Commit != nil {
		raw, err := json.Marshal(out.Commit.Query)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "saved %s: %s\n", out.Commit.Key, raw)
	}
	return nil
}

func printOptions(w io.Writer, label string, options []filtermapper.Option) {
	if len(options) == 0 {
		fmt.Fprintf(w, "%s: -\n", label)
		return
	}
	parts := make([]string, 0, len(options))
	for _, o := range options {
		mark := " "
		if o.Selected {
			mark = "x"
		}
		part := fmt.Sprintf("[%s] %d %s", mark, o.ID, o.Name)
		if o.SpecificAge != "" {
			part += " age=" + o.SpecificAge
		}
		if o.AgeError != "" {
			part += " (" + o.AgeError + ")"
		}
		parts = append(parts, part)
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(parts, "  "))
}
