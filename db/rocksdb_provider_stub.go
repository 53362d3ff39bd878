//go:build !rocksdb
// +build !rocksdb

package db

import "fmt"

// NewRocksDBProvider reports that the binary was built without RocksDB; build with -tags rocksdb to enable it.
func NewRocksDBProvider(directory string) (DatabaseProvider, error) {
	return nil, fmt.Errorf("rocksdb backend for %s not compiled in, rebuild with -tags rocksdb", directory)
}
