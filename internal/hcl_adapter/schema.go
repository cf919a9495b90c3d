package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is the schema of an lfdeploy.hcl file. Unknown attributes and
// blocks are rejected by the decoder.
type fileRoot struct {
	Compiler     string         `hcl:"compiler,optional"`
	Remote       string         `hcl:"remote,optional"`
	GeneratedDir string         `hcl:"generated_dir,optional"`
	StagingDir   string         `hcl:"staging_dir,optional"`
	ToolTimeout  string         `hcl:"tool_timeout,optional"`
	ArtifactName hcl.Expression `hcl:"artifact_name,optional"`

	Locate   *LocateBlock   `hcl:"locate,block"`
	Classify *ClassifyBlock `hcl:"classify,block"`
	Transfer *TransferBlock `hcl:"transfer,block"`
	Notify   *NotifyBlock   `hcl:"notify,block"`
}

// LocateBlock configures artifact probes.
type LocateBlock struct {
	Binary string    `hcl:"binary,optional"`
	Paths  *[]string `hcl:"paths,optional"`
	Globs  *[]string `hcl:"globs,optional"`
}

// ClassifyBlock configures role tokens.
type ClassifyBlock struct {
	ClientTokens *[]string `hcl:"client_tokens,optional"`
	ServerTokens *[]string `hcl:"server_tokens,optional"`
}

// TransferBlock configures the copy tool.
type TransferBlock struct {
	Tool  string    `hcl:"tool,optional"`
	Args  *[]string `hcl:"args,optional"`
	Batch *bool     `hcl:"batch,optional"`
}

// NotifyBlock configures the socket.io notifier.
type NotifyBlock struct {
	URL            string `hcl:"url"`
	Namespace      string `hcl:"namespace,optional"`
	Event          string `hcl:"event,optional"`
	ConnectTimeout string `hcl:"connect_timeout,optional"`
}
