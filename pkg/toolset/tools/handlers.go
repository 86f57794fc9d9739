package tools

import (
	"fmt"

	"github.com/containers/kubernetes-mcp-server/pkg/api"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/resultutil"
)

// OperationsOutput is the result of list_operations.
type OperationsOutput struct {
	Operations []catalog.OperationInfo `json:"operations"`
}

// AskClusterHandler answers a question with the caller's cluster credentials.
func AskClusterHandler(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	_, args, err := catalog.ShellTools().Validate(catalog.ToolAskCluster, params.GetArguments())
	if err != nil {
		return resultutil.NewErrorResult(err).ToToolsetResult()
	}

	session, err := newSession(params)
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to prepare cluster session: %w", err)), nil
	}

	resp := session.Answer(params.Context, args.String("query"))
	return resultutil.NewAnswerResult(resp).ToToolsetResult()
}

// ListOperationsHandler lists the cluster queries questions are routed to.
func ListOperationsHandler(_ api.ToolHandlerParams) (*api.ToolCallResult, error) {
	return resultutil.NewSuccessResult(OperationsOutput{
		Operations: catalog.Default().Describe(),
	}).ToToolsetResult()
}
