package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-renderhttp/internal/prompt"
	"github.com/goliatone/go-renderhttp/pkg/registry"
	"github.com/goliatone/go-renderhttp/pkg/render"
)

type renderFlags struct {
	dirs    []string
	ext     string
	as      string
	data    string
	set     []string
	ask     []string
	headers bool
}

func newRenderCmd(d deps, root *rootFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template and print the body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, d, root, flags, args[0])
		},
	}
	cmd.Flags().StringSliceVarP(&flags.dirs, "dir", "d", []string{"templates"}, "template directories")
	cmd.Flags().StringVarP(&flags.ext, "ext", "e", ".tpl", "template file extension")
	cmd.Flags().StringVar(&flags.as, "as", "", "content-type extension override (e.g. html)")
	cmd.Flags().StringVar(&flags.data, "data", "", "JSON or YAML file with the template context")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "context value as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&flags.ask, "ask", nil, "context keys to prompt for")
	cmd.Flags().BoolVar(&flags.headers, "headers", false, "print status and content-type before the body")
	return cmd
}

func runRender(cmd *cobra.Command, d deps, root *rootFlags, flags *renderFlags, name string) error {
	logger := root.logger(cmd)

	reg, err := registry.New(registry.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := reg.RegisterTemplatesDirectories(flags.ext, flags.dirs...); err != nil {
		return err
	}

	data, err := loadData(flags.data)
	if err != nil {
		return err
	}
	if err := applySets(data, flags.set); err != nil {
		return err
	}
	if len(flags.ask) > 0 {
		answers, err := prompt.AskValues(cmd.Context(), d.prompter, flags.ask, currentValues(data))
		if err != nil {
			return err
		}
		for k, v := range answers {
			data[k] = v
		}
	}

	adapter := render.New(reg, render.WithLogger(logger))
	var res *render.Response
	if flags.as != "" {
		res, err = adapter.RenderResponseWithExtension(name, data, flags.as)
	} else {
		res, err = adapter.RenderResponse(name, data)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.headers {
		ct, ok := res.ContentType()
		if !ok {
			ct = "(unset)"
		}
		fmt.Fprintf(out, "Status: %d\nContent-Type: %s\n\n", res.Status(), ct)
	}
	_, err = res.Body().WriteTo(out)
	return err
}

func loadData(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &data)
	default:
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func applySets(data map[string]any, sets []string) error {
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		data[key] = value
	}
	return nil
}

// currentValues formats the context values set by --data and --set so the
// prompts can show them.
func currentValues(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
