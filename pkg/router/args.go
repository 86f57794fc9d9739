package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rhobs/kubeqa/pkg/catalog"
)

// argsKey renders arguments in a stable order for de-duplication.
func argsKey(args catalog.Arguments) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, ",")
}
