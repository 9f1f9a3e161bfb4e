package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samvad-hq/paykit/pkg/invoice"
	"github.com/samvad-hq/paykit/pkg/resource"
	"github.com/spf13/pflag"
)

type commandFunc func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error)

type command struct {
	usage string
	args  int
	flags func(fs *pflag.FlagSet)
	run   commandFunc
}

// Commands executes one-shot invoice operations and prints the result as JSON.
type Commands struct {
	invoices *invoice.Client
	out      io.Writer
}

// NewCommands binds the command set to an invoice client and output stream.
func NewCommands(invoices *invoice.Client, out io.Writer) *Commands {
	return &Commands{invoices: invoices, out: out}
}

var commands = map[string]command{
	"list": {
		usage: "list [--limit n] [--customer id] [--status s] [-f params]",
		flags: func(fs *pflag.FlagSet) {
			fs.Int("limit", 0, "page size (1-100)")
			fs.String("customer", "", "only invoices for this customer")
			fs.String("status", "", "only invoices in this status")
			fs.StringP("file", "f", "", "YAML/JSON params file")
		},
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params, err := paramsFromFlags(fs)
			if err != nil {
				return nil, err
			}
			if n, _ := fs.GetInt("limit"); n > 0 {
				params["limit"] = n
			}
			for _, name := range []string{"customer", "status"} {
				if v, _ := fs.GetString(name); v != "" {
					params[name] = v
				}
			}
			return c.invoices.List(ctx, params)
		},
	},
	"get": {
		usage: "get <id>",
		args:  1,
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			return c.invoices.Retrieve(ctx, fs.Arg(0))
		},
	},
	"create": {
		usage: "create -f params.yaml",
		flags: fileFlag,
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params, err := paramsFromFlags(fs)
			if err != nil {
				return nil, err
			}
			return c.invoices.Create(ctx, params)
		},
	},
	"update": {
		usage: "update <id> -f params.yaml",
		args:  1,
		flags: fileFlag,
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params, err := paramsFromFlags(fs)
			if err != nil {
				return nil, err
			}
			return c.invoices.Update(ctx, fs.Arg(0), params)
		},
	},
	"save": {
		usage: "save <id> [--metadata k=v]... [--description text]",
		args:  1,
		flags: func(fs *pflag.FlagSet) {
			fs.StringArray("metadata", nil, "metadata key=value to set (repeatable)")
			fs.String("description", "", "new description")
		},
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			pairs, _ := fs.GetStringArray("metadata")
			metadata, err := ParseKeyValues(pairs)
			if err != nil {
				return nil, err
			}
			inv, err := c.invoices.Retrieve(ctx, fs.Arg(0))
			if err != nil {
				return nil, err
			}
			keys := make([]string, 0, len(metadata))
			for k := range metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				inv.SetMetadata(k, metadata[k])
			}
			if fs.Changed("description") {
				inv.Description, _ = fs.GetString("description")
			}
			return c.invoices.Save(ctx, inv)
		},
	},
	"delete": {
		usage: "delete <id>",
		args:  1,
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			return c.invoices.Delete(ctx, &invoice.Invoice{ID: fs.Arg(0)})
		},
	},
	"finalize": {
		usage: "finalize <id> [-f params]",
		args:  1,
		flags: fileFlag,
		run:   actionCommand((*invoice.Client).FinalizeInvoice),
	},
	"mark-uncollectible": {
		usage: "mark-uncollectible <id> [-f params]",
		args:  1,
		flags: fileFlag,
		run:   actionCommand((*invoice.Client).MarkUncollectible),
	},
	"pay": {
		usage: "pay <id> [--source src] [-f params]",
		args:  1,
		flags: func(fs *pflag.FlagSet) {
			fileFlag(fs)
			fs.String("source", "", "payment source to charge")
		},
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params, err := paramsFromFlags(fs)
			if err != nil {
				return nil, err
			}
			if src, _ := fs.GetString("source"); src != "" {
				params["source"] = src
			}
			return c.invoices.Pay(ctx, &invoice.Invoice{ID: fs.Arg(0)}, params)
		},
	},
	"send": {
		usage: "send <id> [-f params]",
		args:  1,
		flags: fileFlag,
		run:   actionCommand((*invoice.Client).SendInvoice),
	},
	"void": {
		usage: "void <id> [-f params]",
		args:  1,
		flags: fileFlag,
		run:   actionCommand((*invoice.Client).VoidInvoice),
	},
	"upcoming": {
		usage: "upcoming [--customer id] [-f params]",
		flags: func(fs *pflag.FlagSet) {
			fileFlag(fs)
			fs.String("customer", "", "customer to preview")
		},
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params, err := paramsFromFlags(fs)
			if err != nil {
				return nil, err
			}
			if cus, _ := fs.GetString("customer"); cus != "" {
				params["customer"] = cus
			}
			return c.invoices.Upcoming(ctx, params)
		},
	},
	"lines": {
		usage: "lines <id> [--limit n]",
		args:  1,
		flags: func(fs *pflag.FlagSet) {
			fs.Int("limit", 0, "page size (1-100)")
		},
		run: func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
			params := resource.Params{}
			if n, _ := fs.GetInt("limit"); n > 0 {
				params["limit"] = n
			}
			return c.invoices.ListLineItems(ctx, fs.Arg(0), params)
		},
	},
}

// Usage lists the available commands.
func Usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString("  ")
		b.WriteString(commands[name].usage)
		b.WriteByte('\n')
	}
	b.WriteString("  watch\n")
	return b.String()
}

// Execute parses args for the named command, runs it and writes the result.
func (c *Commands) Execute(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w (usage: %s)", name, err, cmd.usage)
	}
	if fs.NArg() != cmd.args {
		return fmt.Errorf("%s: expected %d argument(s) (usage: %s)", name, cmd.args, cmd.usage)
	}

	result, err := cmd.run(ctx, c, fs)
	if err != nil {
		return err
	}
	return c.print(result)
}

func (c *Commands) print(v any) error {
	if e, ok := v.(resource.Entity); ok {
		fields, err := resource.Fields(e)
		if err != nil {
			return err
		}
		v = fields
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fileFlag(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "YAML/JSON params file")
}

func paramsFromFlags(fs *pflag.FlagSet) (resource.Params, error) {
	path, _ := fs.GetString("file")
	return LoadParams(path)
}

type invoiceAction func(*invoice.Client, context.Context, *invoice.Invoice, resource.Params) (*invoice.Invoice, error)

func actionCommand(action invoiceAction) commandFunc {
	return func(ctx context.Context, c *Commands, fs *pflag.FlagSet) (any, error) {
		params, err := paramsFromFlags(fs)
		if err != nil {
			return nil, err
		}
		return action(c.invoices, ctx, &invoice.Invoice{ID: fs.Arg(0)}, params)
	}
}
