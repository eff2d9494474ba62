// Package testsupport holds fakes and file helpers shared by package tests.
package testsupport
