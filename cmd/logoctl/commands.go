package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/objects"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
	"github.com/spf13/cobra"
)

func (a *app) entitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "entities",
		Short:   "Lists the known collections",
		Aliases: []string{"e"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := objects.All()
			if a.json() {
				type entity struct {
					Name       string   `json:"name"`
					Path       string   `json:"path"`
					Operations []string `json:"operations"`
				}
				out := make([]entity, len(all))
				for i, e := range all {
					out[i] = entity{Name: e.Name, Path: e.Path, Operations: e.OperationNames()}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			rows := make([][]string, len(all))
			for i, e := range all {
				rows[i] = []string{e.Name, e.Path, strings.Join(e.OperationNames(), ", ")}
			}
			writeTable(cmd.OutOrStdout(), []string{"Entity", "Path", "Operations"}, rows)
			return nil
		},
	}
}

func (a *app) opsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops <entity>",
		Short: "Lists an entity's named operations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := objects.Lookup(args[0])
			if err != nil {
				return err
			}
			if a.json() {
				return writeJSON(cmd.OutOrStdout(), e.Operations)
			}

			names := e.OperationNames()
			rows := make([][]string, len(names))
			for i, name := range names {
				op := e.Operations[name]
				rows[i] = []string{name, op.Verb.Method(), op.Path, op.Body.String()}
			}
			writeTable(cmd.OutOrStdout(), []string{"Operation", "Verb", "Path", "Body"}, rows)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Lists records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resource(args[0])
			if err != nil {
				return err
			}
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}

			var records []client.Record
			if all {
				records, err = client.CollectAll(r.All(cmd.Context(), &opts))
			} else {
				var page *client.Page[client.Record]
				page, err = r.GetAll(cmd.Context(), &opts)
				if page != nil {
					records = page.Items
					a.printCount(cmd, page)
				}
			}
			if err != nil {
				return err
			}
			return a.printRecords(cmd, records, opts.Fields)
		},
	}
	addListFlags(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "follow pages until the collection is exhausted")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	var expand string
	cmd := &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Reads one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resource(args[0])
			if err != nil {
				return err
			}
			var opts *query.ListOptions
			if expand != "" {
				opts = &query.ListOptions{ExpandLevel: expand}
			}
			rec, err := r.GetByID(cmd.Context(), args[1], opts)
			if err != nil {
				return err
			}
			if a.json() {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			return a.printRecords(cmd, []client.Record{*rec}, nil)
		},
	}
	cmd.Flags().StringVar(&expand, "expand", "", "expandLevel, e.g. full")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <entity>",
		Short: "Searches a collection by field values",
		Long: `Searches a collection by field values.

--where name=value adds an equality condition and --like name=value a prefix
match. Names are logical (camelCase) or remote (UPPER_SNAKE); values are read
as numbers, booleans and dates where they look like one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := objects.Lookup(args[0])
			if err != nil {
				return err
			}
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			opts, err = withCriteria(cmd, e.Fields, opts)
			if err != nil {
				return err
			}
			if opts.Q == "" {
				return fmt.Errorf("search needs at least one --where or --like")
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			page, err := client.NewResource[client.Record](c, e).GetAll(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			a.printCount(cmd, page)
			return a.printRecords(cmd, page.Items, opts.Fields)
		},
	}
	addListFlags(cmd)
	addCriteriaFlags(cmd)
	return cmd
}

func (a *app) callCmd() *cobra.Command {
	var (
		params []string
		data   string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "call <entity> <operation> [path values...]",
		Short: "Invokes a named operation",
		Long: `Invokes a named operation.

Path values fill the operation's placeholders in order; --param name=value
fills them by name. --data is the JSON body, or @file to read it from a file.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resource(args[0])
			if err != nil {
				return err
			}
			op, err := r.Entity().Operation(args[1])
			if err != nil {
				return err
			}

			callArgs := client.Args{}
			for _, v := range args[2:] {
				callArgs.Path = append(callArgs.Path, v)
			}
			if len(params) > 0 {
				callArgs.Params, err = parsePairs(params)
				if err != nil {
					return err
				}
			}
			if data != "" {
				if callArgs.Body, err = readBody(data); err != nil {
					return err
				}
			}

			if raw || strings.HasSuffix(op.Path, "ExportToXML") {
				var body []byte
				if err := r.Invoke(cmd.Context(), args[1], callArgs, &body); err != nil {
					return err
				}
				_, err := cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}

			var out any
			if err := r.Invoke(cmd.Context(), args[1], callArgs, &out); err != nil {
				return err
			}
			if out == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "path parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&data, "data", "", "JSON request body, or @file")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body as received")
	return cmd
}

func (a *app) qsCmd() *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "qs",
		Short: "Prints the query string for the given list and search flags",
		Long: `Prints the query string for the given list and search flags without
contacting the server. --entity applies that collection's field names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields query.FieldMap
			if entity != "" {
				e, err := objects.Lookup(entity)
				if err != nil {
					return err
				}
				fields = e.Fields
			}
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			if opts, err = withCriteria(cmd, fields, opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), query.Build(opts))
			return nil
		},
	}
	addListFlags(cmd)
	addCriteriaFlags(cmd)
	cmd.Flags().StringVar(&entity, "entity", "", "collection whose field names apply")
	return cmd
}

func (a *app) resource(name string) (*client.Resource[client.Record], error) {
	e, err := objects.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return client.NewResource[client.Record](c, e), nil
}

func addListFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("limit", 0, "page size")
	f.Int("offset", 0, "records to skip")
	f.StringSlice("fields", nil, "fields to return")
	f.StringSlice("sort", nil, "fields to sort by")
	f.Bool("desc", false, "sort descending")
	f.Bool("asc", false, "sort ascending, sent explicitly")
	f.String("q", "", "raw filter expression, and-joined with --where/--like")
	f.Bool("count", false, "ask for the total record count")
	f.String("expand", "", "expandLevel, e.g. full")
}

func listOptions(cmd *cobra.Command) (query.ListOptions, error) {
	f := cmd.Flags()
	var opts query.ListOptions

	if f.Changed("limit") {
		n, _ := f.GetInt("limit")
		opts.Limit = query.Int(n)
	}
	if f.Changed("offset") {
		n, _ := f.GetInt("offset")
		opts.Offset = query.Int(n)
	}
	opts.Fields, _ = f.GetStringSlice("fields")
	if sortBy, _ := f.GetStringSlice("sort"); len(sortBy) > 0 {
		opts.Sort = query.SortBy(sortBy...)
		desc, _ := f.GetBool("desc")
		asc, _ := f.GetBool("asc")
		switch {
		case desc && asc:
			return opts, fmt.Errorf("--asc and --desc are exclusive")
		case desc:
			opts.Sort = opts.Sort.Desc()
		case asc:
			opts.Sort = opts.Sort.Asc()
		}
	}
	opts.Q, _ = f.GetString("q")
	if f.Changed("count") {
		b, _ := f.GetBool("count")
		opts.Count = query.Bool(b)
	}
	opts.ExpandLevel, _ = f.GetString("expand")
	return opts, nil
}

func addCriteriaFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("where", nil, "equality condition name=value (repeatable)")
	cmd.Flags().StringArray("like", nil, "prefix condition name=value (repeatable)")
}

// withCriteria compiles --where and --like into opts.Q.
func withCriteria(cmd *cobra.Command, fields query.FieldMap, opts query.ListOptions) (query.ListOptions, error) {
	where, _ := cmd.Flags().GetStringArray("where")
	like, _ := cmd.Flags().GetStringArray("like")

	var eq query.Criteria
	for _, pair := range where {
		k, v, err := splitPair(pair)
		if err != nil {
			return opts, err
		}
		eq = eq.And(k, core.ParseScalar(v))
	}
	var prefix query.Criteria
	for _, pair := range like {
		k, v, err := splitPair(pair)
		if err != nil {
			return opts, err
		}
		prefix = prefix.And(k, v)
	}

	opts = query.Search(eq, fields, opts)
	return query.Search(query.LikePrefix(prefix), fields, opts), nil
}

func splitPair(pair string) (string, string, error) {
	k, v, ok := strings.Cut(pair, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", pair)
	}
	return k, v, nil
}

func parsePairs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		out[k] = core.ParseScalar(v)
	}
	return out, nil
}

func readBody(data string) (any, error) {
	raw := []byte(data)
	if name, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("--data is not valid JSON: %w", err)
	}
	return body, nil
}
