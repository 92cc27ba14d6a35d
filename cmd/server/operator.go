package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/matst80/relayroom/internal/relay"
)

var (
	okPrint   = color.New(color.FgGreen).PrintlnFunc()
	warnPrint = color.New(color.FgYellow).PrintlnFunc()
	errPrint  = color.New(color.FgRed).PrintlnFunc()
)

const operatorHelp = `Commands:
 pending                     -> show pending connection requests
 accept <pid>                -> accept pending request
 reject <pid>                -> reject pending request
 list                        -> show connected clients
 kick <id>                   -> disconnect a connected client by id
 broadcast <message>         -> server send message to all
 stop                        -> shutdown server
 help                        -> show this
`

// runOperator reads management commands from stdin until stop or EOF. It only
// reaches the core through the plain-value operator API, so stale pids and
// unknown ids come back as ordinary false results.
func runOperator(srv *relay.Server, shutdown func()) {
	fmt.Print(operatorHelp)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		action, arg := line, ""
		if i := strings.IndexByte(line, ' '); i >= 0 {
			action, arg = line[:i], strings.TrimSpace(line[i+1:])
		}
		switch strings.ToLower(action) {
		case "pending":
			reqs := srv.PendingRequests()
			if len(reqs) == 0 {
				fmt.Println("No pending requests.")
				break
			}
			for _, p := range reqs {
				fmt.Printf("PID:%d - %s from %s\n", p.ID, p.Name, p.Addr)
			}
		case "accept":
			pid, ok := parseID(arg, "accept <pid>")
			if !ok {
				break
			}
			if srv.Accept(pid) {
				okPrint(fmt.Sprintf("Accepted pending %d", pid))
			} else {
				warnPrint("No such pending pid")
			}
		case "reject":
			pid, ok := parseID(arg, "reject <pid>")
			if !ok {
				break
			}
			if srv.Reject(pid) {
				okPrint(fmt.Sprintf("Rejected pending %d", pid))
			} else {
				warnPrint("No such pending pid")
			}
		case "list":
			clients := srv.Clients()
			if len(clients) == 0 {
				fmt.Println("No connected clients.")
				break
			}
			for _, c := range clients {
				fmt.Printf("ID:%d Name:%s Addr:%s\n", c.ID, c.Name, c.Addr)
			}
		case "kick":
			id, ok := parseID(arg, "kick <id>")
			if !ok {
				break
			}
			if srv.Kick(id) {
				okPrint(fmt.Sprintf("Kicked user %d", id))
			} else {
				warnPrint("No such user id")
			}
		case "broadcast":
			if arg == "" {
				errPrint("Usage: broadcast <message>")
				break
			}
			srv.Broadcast(arg)
			fmt.Println("Broadcast sent.")
		case "stop":
			fmt.Println("Stopping server...")
			shutdown()
			return
		case "help":
			fmt.Print(operatorHelp)
		default:
			errPrint("Unknown command. Type 'help' for commands.")
		}
	}
	// EOF on stdin means no operator is attached anymore; treat it as stop.
	shutdown()
}

func parseID(arg, usage string) (int, bool) {
	if arg == "" {
		errPrint("Usage: " + usage)
		return 0, false
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		errPrint("invalid id")
		return 0, false
	}
	return id, true
}
