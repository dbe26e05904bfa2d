// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing turns and sessions. They are not intended
// for production usage.
package testutil
