package workflow

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// rawFile is the first decoding pass. Only variables are pulled out; the rest
// of the body is decoded once the evaluation context is complete.
type rawFile struct {
	Variables []*variablesBlock `hcl:"variables,block"`
	Remain    hcl.Body          `hcl:",remain"`
}

// variablesBlock holds free-form `name = value` attributes.
type variablesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// fileBody is the second decoding pass.
type fileBody struct {
	Contexts []*contextBlock `hcl:"context,block"`
	Steps    []*stepBlock    `hcl:"step,block"`
}

// contextBlock describes the environment the workflow starts in.
type contextBlock struct {
	ExistingDirs []string `hcl:"existing_dirs,optional"`
}

// stepBlock is a `step "<type>" { ... }` block.
type stepBlock struct {
	Type         string            `hcl:"type,label"`
	Name         string            `hcl:"name,optional"`
	Args         []string          `hcl:"args,optional"`
	Cwd          string            `hcl:"cwd,optional"`
	AllowFailure bool              `hcl:"allow_failure,optional"`
	ShowOutput   bool              `hcl:"show_output,optional"`
	Timeout      string            `hcl:"timeout,optional"`
	Env          map[string]string `hcl:"env,optional"`
	Stdin        string            `hcl:"stdin,optional"`
	Options      cty.Value         `hcl:"options,optional"`
}
