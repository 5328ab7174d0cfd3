// Package main - spider CLI
// 단발성 수집 진입점
//
// 사용법:
//
//	go run ./cmd/spider report 000001.SZ
//	go run ./cmd/spider free-shares 600000.SH
package main

import (
	"os"

	"github.com/wonny/stockspider/cmd/spider/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
