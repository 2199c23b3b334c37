package workflow

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/fsutil"
	"github.com/vk/contestflow/internal/resolver"
	"github.com/vk/contestflow/internal/step"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Extension is the file extension of workflow files.
const Extension = ".hcl"

// Options tune how a workflow is evaluated.
type Options struct {
	// Vars override variables declared in the workflow files.
	Vars map[string]string
	// EnvFile is an optional dotenv file whose entries are exposed under
	// env.* and take precedence over the process environment.
	EnvFile string
	// Environ replaces os.Environ() as the source of env.*. Used by tests.
	Environ []string
}

// Workflow is a fully evaluated workflow definition.
type Workflow struct {
	Files     []string
	Variables map[string]cty.Value
	Context   resolver.Context
	Steps     []step.Step
}

type parsedFile struct {
	name string
	raw  rawFile
}

// Load reads the workflow at path (a file or a directory of .hcl files),
// evaluates every expression and returns the steps in declaration order.
func Load(ctx context.Context, path string, opts Options) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Workflow loader started.", "path", path)

	files, err := findFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered workflow files.", "count", len(files))

	env, err := environment(opts)
	if err != nil {
		return nil, err
	}

	// First pass: parse every file and collect its variables.
	parser := hclparse.NewParser()
	parsed := make([]parsedFile, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse workflow file %s: %w", file, diags)
		}
		var raw rawFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &raw); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode workflow file %s: %w", file, diags)
		}
		parsed = append(parsed, parsedFile{name: file, raw: raw})
	}

	envCtx := &hcl.EvalContext{Variables: map[string]cty.Value{"env": env}}
	vars := make(map[string]cty.Value)
	for _, pf := range parsed {
		for _, block := range pf.raw.Variables {
			if err := decodeVariables(block, envCtx, vars); err != nil {
				return nil, fmt.Errorf("failed to evaluate variables in %s: %w", pf.name, err)
			}
		}
	}
	for name, value := range opts.Vars {
		vars[name] = cty.StringVal(value)
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
		"var": cty.ObjectVal(vars),
		"env": env,
	}}

	// Second pass: decode context and steps with the complete context.
	wf := &Workflow{Files: files, Variables: vars}
	for _, pf := range parsed {
		var body fileBody
		if diags := gohcl.DecodeBody(pf.raw.Remain, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode workflow file %s: %w", pf.name, diags)
		}
		for _, c := range body.Contexts {
			wf.Context.ExistingDirs = append(wf.Context.ExistingDirs, c.ExistingDirs...)
		}
		for _, block := range body.Steps {
			s, err := translateStep(block)
			if err != nil {
				return nil, fmt.Errorf("%s: step %d (%s): %w", pf.name, len(wf.Steps), block.Type, err)
			}
			wf.Steps = append(wf.Steps, s)
		}
	}

	logger.Debug("Workflow loading complete.",
		"files", len(files),
		"variables", len(vars),
		"steps", len(wf.Steps),
		"existing_dirs", len(wf.Context.ExistingDirs),
	)
	return wf, nil
}

// findFiles resolves path into a sorted list of workflow files.
func findFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing workflow path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := fsutil.FindFilesByExtension(path, Extension)
	if err != nil {
		return nil, fmt.Errorf("error scanning workflow directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", Extension, path)
	}
	return files, nil
}

// environment builds the env.* object from the process environment and the
// optional dotenv file.
func environment(opts Options) (cty.Value, error) {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			values[k] = v
		}
	}
	if opts.EnvFile != "" {
		fileValues, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return cty.MapValEmpty(cty.String), nil
	}
	return gocty.ToCtyValue(values, cty.Map(cty.String))
}

func decodeVariables(block *variablesBlock, evalCtx *hcl.EvalContext, into map[string]cty.Value) error {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, diags := attrs[name].Expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		into[name] = value
	}
	return nil
}

func translateStep(block *stepBlock) (step.Step, error) {
	s := step.Step{
		Type:         step.Type(strings.ToLower(block.Type)),
		Args:         block.Args,
		Cwd:          block.Cwd,
		AllowFailure: block.AllowFailure,
		ShowOutput:   block.ShowOutput,
		Name:         block.Name,
		Env:          block.Env,
		Stdin:        block.Stdin,
	}
	if block.Timeout != "" {
		d, err := time.ParseDuration(block.Timeout)
		if err != nil {
			return step.Step{}, fmt.Errorf("invalid timeout %q: %w", block.Timeout, err)
		}
		s.Timeout = d
	}
	opts, err := translateOptions(block.Options)
	if err != nil {
		return step.Step{}, err
	}
	s.Options = opts
	return s, nil
}

// translateOptions flattens the options object into strings. Lists and
// tuples are joined with commas, the form the docker argv builders expect.
func translateOptions(v cty.Value) (map[string]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("options must be an object, got %s", ty.FriendlyName())
	}
	out := make(map[string]string, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		s, err := optionString(elem)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", key.AsString(), err)
		}
		out[key.AsString()] = s
	}
	return out, nil
}

func optionString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	ty := v.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := optionString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	str, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	var out string
	if err := gocty.FromCtyValue(str, &out); err != nil {
		return "", err
	}
	return out, nil
}
