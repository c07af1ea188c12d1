// Command polycalldemo wires up a minimal FFI core and dispatches a
// call into a mock language bridge end to end: type registration,
// function exposure, security verification, and result caching.
//
// Usage:
//
//	go run ./cmd/polycalldemo                  # use every default
//	go run ./cmd/polycalldemo -security high   # raise the isolation ceiling
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/obinexus/libpolycall/config"
	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/dispatch"
	"github.com/obinexus/libpolycall/ffi/security"
	"github.com/obinexus/libpolycall/ffi/types"
	"github.com/obinexus/libpolycall/internal/testsupport"
	"github.com/obinexus/libpolycall/observability"
)

// stdLogger implements dispatch.Logger using the standard library log
// package.
type stdLogger struct{}

func (l *stdLogger) Debug(msg string, keysAndValues ...any) {
	log.Printf("[DEBUG] %s %v", msg, keysAndValues)
}
func (l *stdLogger) Info(msg string, keysAndValues ...any) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}
func (l *stdLogger) Warn(msg string, keysAndValues ...any) {
	log.Printf("[WARN] %s %v", msg, keysAndValues)
}
func (l *stdLogger) Error(msg string, keysAndValues ...any) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

func main() {
	securityLevel := flag.String("security", "medium", "security level: none, low, medium, high, maximum")
	otlpEndpoint := flag.String("otlp-endpoint", "localhost:4317", "OTLP gRPC collector endpoint for call tracing")
	flag.Parse()

	shutdownTracer, err := observability.InitTracer("polycalldemo", *otlpEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	cfg := dispatch.Defaults()
	cfg.Init.SecurityLevel = config.SecurityLevel(*securityLevel)
	cfg.Logger = &stdLogger{}

	ctx, err := dispatch.NewContext(cfg)
	if err != nil {
		log.Fatalf("failed to build dispatch context: %v", err)
	}

	background := context.Background()

	python := testsupport.NewMockBridge()
	python.CallFunc = func(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error) {
		a, b := args[0].AsInt64(), args[1].AsInt64()
		return types.NewInt32(int32(a + b)), nil
	}
	if err := ctx.RegisterLanguage(background, "python", python, 0); err != nil {
		log.Fatalf("failed to register python bridge: %v", err)
	}

	node := testsupport.NewMockBridge()
	if err := ctx.RegisterLanguage(background, "node", node, bridge.CapabilityThreadSafe); err != nil {
		log.Fatalf("failed to register node bridge: %v", err)
	}

	sig := &types.Signature{
		ReturnTypeID: "i32",
		Params: []types.ParamDescriptor{
			{Name: "a", TypeID: "i32"},
			{Name: "b", TypeID: "i32"},
		},
	}
	if err := ctx.RegisterFunction(dispatch.FunctionRecord{
		Name:           "add",
		Signature:      sig,
		SourceLanguage: "python",
	}, security.Permission(0), security.LevelShared); err != nil {
		log.Fatalf("failed to register add: %v", err)
	}

	args := []types.CanonicalValue{types.NewInt32(2), types.NewInt32(3)}
	result, err := ctx.Call(background, "add", "python", args, dispatch.CallOptions{
		SourceLanguage: "python",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "call failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("add(2, 3) = %d\n", result.AsInt64())

	// Second call should be served from the result cache.
	if _, err := ctx.Call(background, "add", "python", args, dispatch.CallOptions{SourceLanguage: "python"}); err != nil {
		fmt.Fprintf(os.Stderr, "cached call failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("registered languages: %v\n", ctx.LanguageNames())
	fmt.Printf("registered functions: %v\n", ctx.FunctionNames())
}
