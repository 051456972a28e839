package input

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/ayusman/rasoi/internal/plugin"
)

// PointerPlugin is the plugin name PluginDriver looks up.
const PointerPlugin = "pointer"

var pointerActions = []string{"move", "click", "scroll", "screen-size"}

// PluginDriver runs every action through the pointer plugin.
type PluginDriver struct {
	exec   *plugin.Executor
	plugin *plugin.Plugin
}

// NewPluginDriver looks up the pointer plugin in mgr. Discover must have run.
func NewPluginDriver(mgr *plugin.Manager, exec *plugin.Executor) (*PluginDriver, error) {
	p, err := mgr.Get(PointerPlugin)
	if err != nil {
		return nil, fmt.Errorf("%s plugin in %s: %w", PointerPlugin, mgr.PluginDir(), err)
	}
	for _, a := range pointerActions {
		if !p.Manifest.Supports(a) {
			return nil, fmt.Errorf("%s plugin does not support %q", PointerPlugin, a)
		}
	}
	return &PluginDriver{exec: exec, plugin: p}, nil
}

func (d *PluginDriver) ScreenSize(ctx context.Context) (int, int, error) {
	resp, err := d.call(ctx, "screen-size", "", nil)
	if err != nil {
		return 0, 0, err
	}
	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal(resp.Data, &size); err != nil {
		return 0, 0, fmt.Errorf("decode screen size: %w", err)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid screen size %dx%d", size.Width, size.Height)
	}
	return size.Width, size.Height, nil
}

func (d *PluginDriver) MoveTo(ctx context.Context, x, y int) error {
	_, err := d.call(ctx, "move", "pointer", map[string]int{"x": x, "y": y})
	return err
}

func (d *PluginDriver) Click(ctx context.Context) error {
	_, err := d.call(ctx, "click", "click", map[string]string{"button": "left"})
	return err
}

func (d *PluginDriver) Scroll(ctx context.Context, amount int) error {
	g := "scroll_up"
	if amount < 0 {
		g = "scroll_down"
	}
	_, err := d.call(ctx, "scroll", g, map[string]int{"amount": amount})
	return err
}

func (d *PluginDriver) call(ctx context.Context, action, gesture string, params any) (*plugin.Response, error) {
	req := &plugin.Request{Action: action, Gesture: gesture}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", action, err)
		}
		req.Params = raw
	}

	resp, err := d.exec.Execute(ctx, d.plugin, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s", action, resp.Error)
	}
	return resp, nil
}
