package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "錯誤: %v\n", err)
		os.Exit(1)
	}
}

// redirectStdErr 把崩潰棧等底層輸出落到日誌目錄，別污染終端
func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err == nil {
		os.Stderr = f
	}
}
