// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var chatUserName string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Samantha in the terminal",
	Run:   runChatCommand,
}

func init() {
	chatCmd.Flags().StringVar(&chatUserName, "name", "친구", "name Samantha calls you by")
}

func runChatCommand(_ *cobra.Command, args []string) {
	if len(args) > 0 {
		fmt.Printf("Warning: Unexpected arguments ignored: %v\n", args)
		fmt.Println("Use 'samantha chat --help' to see available flags.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	service, cleanup, err := buildService(ctx)
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	defer cleanup()

	fmt.Println(service.Greeting(chatUserName))

	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		result, err := service.Chat(ctx, sessionID, chatUserName, message)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("Error: %v\n", err)
			continue
		}
		sessionID = result.SessionID

		fmt.Printf("\n%s\n\n", result.Reply)
		if result.Terminated {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Input error: %v", err)
	}
}
