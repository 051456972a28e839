// Command pointer is the rasoi-mouse plugin that drives the OS mouse pointer.
// On Linux it shells out to xdotool; on macOS to cliclick and osascript.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Request mirrors plugin.Request.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response mirrors plugin.Response.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type moveParams struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type clickParams struct {
	Button string `json:"button"`
}

// scrollParams.Amount is in wheel clicks; positive scrolls up.
type scrollParams struct {
	Amount int `json:"amount"`
}

type screenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var errUnsupported = errors.New("not supported on " + runtime.GOOS)

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeError(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	data, err := handle(req)
	if err != nil {
		writeError(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}
	writeSuccess(data)
}

func handle(req Request) (any, error) {
	switch req.Action {
	case "move":
		var p moveParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, move(p.X, p.Y)
	case "click":
		var p clickParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, click(p.Button)
	case "scroll":
		var p scrollParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, scroll(p.Amount)
	case "screen-size":
		return size()
	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	return nil
}

func move(x, y int) error {
	switch runtime.GOOS {
	case "linux":
		return run("xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	case "darwin":
		return run("cliclick", fmt.Sprintf("m:%d,%d", x, y))
	}
	return errUnsupported
}

func click(button string) error {
	right := strings.EqualFold(button, "right")
	switch runtime.GOOS {
	case "linux":
		b := "1"
		if right {
			b = "3"
		}
		return run("xdotool", "click", b)
	case "darwin":
		if right {
			return run("cliclick", "rc:.")
		}
		return run("cliclick", "c:.")
	}
	return errUnsupported
}

func scroll(amount int) error {
	if amount == 0 {
		return nil
	}
	switch runtime.GOOS {
	case "linux":
		button := "4"
		if amount < 0 {
			button = "5"
			amount = -amount
		}
		return run("xdotool", "click", "--repeat", strconv.Itoa(amount), "--delay", "1", button)
	}
	return errUnsupported
}

func size() (screenSize, error) {
	switch runtime.GOOS {
	case "linux":
		out, err := output("xdotool", "getdisplaygeometry")
		if err != nil {
			return screenSize{}, err
		}
		return parseSize(strings.Fields(out))
	case "darwin":
		out, err := output("osascript", "-e", `tell application "Finder" to get bounds of window of desktop`)
		if err != nil {
			return screenSize{}, err
		}
		// "0, 0, 1440, 900"
		fields := strings.Split(out, ",")
		if len(fields) != 4 {
			return screenSize{}, fmt.Errorf("unexpected bounds %q", out)
		}
		return parseSize(fields[2:])
	}
	return screenSize{}, errUnsupported
}

func parseSize(fields []string) (screenSize, error) {
	if len(fields) != 2 {
		return screenSize{}, fmt.Errorf("unexpected geometry %q", strings.Join(fields, " "))
	}
	w, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return screenSize{}, fmt.Errorf("parse width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return screenSize{}, fmt.Errorf("parse height: %w", err)
	}
	return screenSize{Width: w, Height: h}, nil
}

func run(name string, args ...string) error {
	_, err := output(name, args...)
	return err
}

func output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func writeError(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Error: msg})
}

func writeSuccess(data any) {
	resp := Response{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeError(fmt.Sprintf("failed to encode result: %v", err))
			return
		}
		resp.Data = raw
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
