// Package source loads rules configurations.
//
// A Source produces a Document: the decoded configuration, its raw body and
// a revision string. FileSource reads one JSON or YAML file. GitSource keeps
// a local clone of a repository branch and reads a file from its worktree;
// its revision is the HEAD commit. MemorySource serves fixed documents for
// tests and embedding.
package source
