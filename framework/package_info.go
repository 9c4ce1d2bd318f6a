// Package framework contains the low-level test runner infrastructure that the board test suites
// are built on.
//
// There is a general notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results, debug output, and the requirement IDs they verify. Tests run outside
// of "go test", so they can be pointed at real hardware from a command-line runner.
//
// The domain-specific code that knows what is being tested, such as how to talk to a board, is
// responsible for providing a test API on top of the test context.
package framework
