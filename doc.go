// Package nichefmt decodes niche-optimized Rust containers from the memory
// of an inspected process and presents them the way a debugger shows values.
//
// Two families are supported: smol_str::SmolStr, whose first byte selects
// between inline bytes, a static reference and a reference-counted heap
// buffer, and smallvec::SmallVec<T, N>, which folds a heap/inline tag into
// the low bit of its length.
//
// # Architecture Overview
//
// The root package defines the host contracts. Everything else builds on
// them:
//
//	nichefmt/           Memory, Type, Value and Target interfaces
//	├── layout/         Field paths and the binary layout constants
//	├── smolstr/        SmolStr decoder
//	├── smallvec/       SmallVec decoder with lazy element access
//	├── present/        Summaries and synthetic-children providers
//	├── formatter/      Type-name registry, categories, Install
//	├── memory/         Images, compressed segments, wasm and /proc backends
//	├── tree/           Declared type trees evaluated over a Memory
//	├── scene/          YAML/CBOR scene files that build a tree host
//	├── config/         YAML configuration
//	├── errors/         Structured error types and decode outcomes
//	└── cmd/nichefmt/   Command-line inspector
//
// # Quick Start
//
// Register the formatters and render a value:
//
//	reg := formatter.NewRegistry()
//	if err := formatter.Install(reg); err != nil {
//	    return err
//	}
//	summary, _ := reg.Summarize(v)  // "hello"
//	p, _ := reg.Provider(v)
//	for _, c := range present.Children(p) {
//	    fmt.Println(c.Name)
//	}
//
// # Failure Model
//
// Decoding never fails from the caller's point of view. A missing field,
// an unreadable address or a stale pointer collapses the record to its
// empty form: an unreadable string prints as "" and an unreadable vector
// as size=0 (or size=? when even its length is unreadable). Each decoder
// also has a TryDecode form that returns the error, classified by
// errors.OutcomeOf.
//
// Memory is only ever read. Nothing is cached between requests.
package nichefmt
