// Package utils holds small time helpers shared by the live service and the
// schedule preprocessor.
package utils
