package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	t.Parallel()

	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/authbite/internal/pkg/router.(*Router).recover.func1()
	/src/authbite/internal/pkg/router/middleware_recover.go:28 +0x4a
panic({0x1029a80?, 0x14000128040?})
	/usr/local/go/src/runtime/panic.go:785 +0x124
github.com/shandysiswandi/authbite/internal/authenticator/inbound.(*HTTPEndpoint).Codes(...)
	/src/authbite/internal/authenticator/inbound/http_endpoint.go:51
`)

	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:28",
		"internal/authenticator/inbound/http_endpoint.go:51",
	}, InternalPaths(stack))

	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:3 +0x1\n")))
}

func TestCapture(t *testing.T) {
	t.Parallel()

	got := Capture()
	paths, ok := got.([]string)
	if assert.True(t, ok, "test file lives under internal/") {
		assert.Contains(t, paths[len(paths)-1], "internal/pkg/stacktrace/")
	}
}
