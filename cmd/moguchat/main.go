// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

// Command moguchat starts a broadcast chat server or an interactive client.
//
//	moguchat server [-listen addr]
//	moguchat client [-listen addr] <username>
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	ms "github.com/cmacro/moguchat"
	"github.com/cmacro/moguchat/chat"
)

func runSysSignal(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			select {
			case <-sigs:
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  moguchat server [-listen addr]")
	fmt.Fprintln(os.Stderr, "  moguchat client [-listen addr] <username>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "server":
		fs := flag.NewFlagSet("server", flag.ExitOnError)
		addr := fs.String("listen", ms.DefaultAddr, "addr to listen")
		fs.Parse(os.Args[2:])
		runServer(*addr)
	case "client":
		fs := flag.NewFlagSet("client", flag.ExitOnError)
		addr := fs.String("listen", ms.DefaultAddr, "addr to connect")
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			usage()
		}
		runClient(*addr, fs.Arg(0))
	default:
		usage()
	}
}

func runServer(addr string) {
	svrLog := ms.Stdout("Server", "INFO", true)
	hub := chat.NewHub(svrLog.Sub("Hub"))
	connecter := chat.NewConnecter(hub, svrLog.Sub("Connect"))
	server := ms.NewServer(addr, connecter, svrLog)

	ctx, cancel := context.WithCancel(context.Background())
	runSysSignal(ctx, cancel)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		server.Run(ctx)
		cancel()
	}()

	<-ctx.Done()
	hub.CloseAll()
	wg.Wait()
	svrLog.Info("closed.")
}

func runClient(addr, username string) {
	mainLog := ms.Stdout("Client", "INFO", true)
	client := chat.NewClient(addr, username, mainLog.Sub("Session"))
	client.OnMessage = func(text string) {
		fmt.Printf("\r%s\n> ", text)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runSysSignal(ctx, cancel)

	go func() {
		defer cancel()
		sc := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for sc.Scan() {
			line := sc.Text()
			if line == "/exit" {
				client.Close()
				return
			}
			if line == "" {
				fmt.Print("> ")
				continue
			}
			if err := client.Send(line); err != nil {
				mainLog.Error("send message", err)
				return
			}
			fmt.Print("> ")
		}
	}()

	if err := client.Run(ctx); err != nil {
		mainLog.Error("client run", err)
		os.Exit(1)
	}
	fmt.Println("Disconnected")
}
