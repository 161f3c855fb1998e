package envs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ToSlice renders envs as sorted KEY=VALUE pairs for exec and container specs.
func ToSlice(envs map[string]string) []string {
	result := lo.MapToSlice(envs, func(key, value string) string {
		return fmt.Sprintf("%s=%s", key, value)
	})
	sort.Strings(result)
	return result
}

// WithPrefix returns the process environment entries whose key starts with prefix, prefix stripped.
func WithPrefix(prefix string) map[string]string {
	result := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		result[strings.TrimPrefix(key, prefix)] = value
	}
	return result
}
