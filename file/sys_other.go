//go:build !unix

package file

import "os"

func linkCount(os.FileInfo) uint64 { return 1 }

func preserveOwner(*os.File, os.FileInfo) error { return nil }

func defaultPerm() os.FileMode { return 0666 }

func syncDir(string) error { return nil }

func isNoSpace(error) bool { return false }
