package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serviceDir = "contexts/account-management/account-service"
	svc        = modulePath + "/" + serviceDir
)

func writeSource(t *testing.T, imports ...string) string {
	t.Helper()
	src := "package x\n\nimport (\n"
	for _, imp := range imports {
		src += "\t_ \"" + imp + "\"\n"
	}
	src += ")\n"
	file := filepath.Join(t.TempDir(), "x.go")
	require.NoError(t, os.WriteFile(file, []byte(src), 0o600))
	return file
}

func importsOf(violations []violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Import)
	}
	return out
}

func TestLayerRules(t *testing.T) {
	cases := []struct {
		name     string
		at       string
		imports  []string
		rejected []string
	}{
		{
			name:     "domain stays on domain and stdlib",
			at:       serviceDir + "/domain/services/x.go",
			imports:  []string{"time", svc + "/domain/errors", svc + "/ports", modulePath + "/internal/platform/cache"},
			rejected: []string{svc + "/ports", modulePath + "/internal/platform/cache"},
		},
		{
			name:     "ports see only domain",
			at:       serviceDir + "/ports/x.go",
			imports:  []string{"context", svc + "/domain/entities", svc + "/application"},
			rejected: []string{svc + "/application"},
		},
		{
			name:     "application never reaches adapters",
			at:       serviceDir + "/application/commands/x.go",
			imports:  []string{svc + "/ports", svc + "/application", svc + "/adapters/memory", "github.com/google/uuid"},
			rejected: []string{svc + "/adapters/memory", "github.com/google/uuid"},
		},
		{
			name:     "transport is stdlib only",
			at:       serviceDir + "/transport/http/x.go",
			imports:  []string{"encoding/json", "github.com/gin-gonic/gin"},
			rejected: []string{"github.com/gin-gonic/gin"},
		},
		{
			name: "adapters use platform but not the runtime",
			at:   serviceDir + "/adapters/postgres/x.go",
			imports: []string{
				"gorm.io/gorm",
				svc + "/ports",
				modulePath + "/internal/platform/db",
				svc + "/adapters/memory",
				modulePath + "/internal/platform/httpserver",
				modulePath + "/internal/app/bootstrap",
				modulePath + "/cmd/api",
			},
			rejected: []string{
				svc + "/adapters/memory",
				modulePath + "/internal/platform/httpserver",
				modulePath + "/internal/app/bootstrap",
				modulePath + "/cmd/api",
			},
		},
		{
			name:     "service root wires its own layers",
			at:       serviceDir + "/module.go",
			imports:  []string{svc + "/adapters/cache", modulePath + "/internal/platform/cache", modulePath + "/internal/app/bootstrap"},
			rejected: []string{modulePath + "/internal/app/bootstrap"},
		},
		{
			name:     "platform packages stay below contexts",
			at:       "internal/platform/cache/x.go",
			imports:  []string{"github.com/redis/go-redis/v9", modulePath + "/internal/platform/config", svc + "/ports"},
			rejected: []string{svc + "/ports"},
		},
		{
			name:     "http server may mount contexts",
			at:       "internal/platform/httpserver/x.go",
			imports:  []string{svc, svc + "/transport/http", modulePath + "/internal/platform/httpserver/docs", modulePath + "/internal/app/bootstrap"},
			rejected: []string{modulePath + "/internal/app/bootstrap"},
		},
		{
			name:     "composition root never imports cmd",
			at:       "internal/app/bootstrap/x.go",
			imports:  []string{svc, modulePath + "/internal/platform/db", modulePath + "/cmd/api"},
			rejected: []string{modulePath + "/cmd/api"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			violations := validateFile(writeSource(t, tc.imports...), tc.at)
			assert.ElementsMatch(t, tc.rejected, importsOf(violations))
		})
	}
}

func TestCrossModuleImportIsRejected(t *testing.T) {
	file := writeSource(t, modulePath+"/contexts/billing/invoice-service/ports")
	violations := validateFile(file, serviceDir+"/adapters/http/x.go")

	require.Len(t, violations, 1)
	assert.Equal(t, "cross-module imports are forbidden", violations[0].Rule)
}

func TestUnknownLayerIsReported(t *testing.T) {
	violations := validateFile(writeSource(t, "fmt"), serviceDir+"/helpers/x.go")

	require.Len(t, violations, 1)
	assert.Equal(t, "package sits outside the known layers", violations[0].Rule)
}

func TestClassify(t *testing.T) {
	layer, owner := classify(serviceDir + "/domain/entities/user.go")
	assert.Equal(t, "domain", layer)
	assert.Equal(t, serviceDir, owner)

	layer, _ = classify("internal/platform/httpserver/docs/docs.go")
	assert.Equal(t, "httpserver", layer)
	layer, _ = classify("internal/platform/db/db.go")
	assert.Equal(t, "platform", layer)
	layer, _ = classify("internal/app/bootstrap/bootstrap.go")
	assert.Equal(t, "app", layer)
}

func TestRepositoryPassesBoundaryChecks(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Dir(wd)))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Empty(t, collectViolations("contexts", "internal"))
}
