// Package mcp exposes the librarian over the Model Context Protocol so
// LLM assistants can inspect and rework dump files on disk.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/librarian/devices"
	"github.com/james-see/synthlibrarian/pkg/sysex"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Serve runs the MCP server on stdio until the client disconnects.
func Serve(version string) error {
	s := server.NewMCPServer(
		"Synth Librarian MCP",
		version,
		server.WithToolCapabilities(false),
	)

	listTool := mcp.NewTool("librarian_list-devices",
		mcp.WithDescription("Lists the supported synthesizers with their bank layout."),
	)
	s.AddTool(listTool, listDevicesHandler)

	inspectTool := mcp.NewTool("librarian_inspect-dump",
		mcp.WithDescription("Reads a SysEx dump file and reports the device, dump kind, patch name, layer names and stored tags."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .syx file.")),
		mcp.WithString("device", mcp.Description("Device name to use instead of auto-detection (e.g. solaris, matrix6).")),
	)
	s.AddTool(inspectTool, inspectHandler)

	renameTool := mcp.NewTool("librarian_rename-patch",
		mcp.WithDescription("Rewrites the patch name inside a SysEx dump file and writes the result to a new file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .syx file.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("The new patch name.")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Path for the renamed .syx file.")),
		mcp.WithString("device", mcp.Description("Device name to use instead of auto-detection.")),
	)
	s.AddTool(renameTool, renameHandler)

	log.Println("Starting Synth Librarian MCP server...")
	return server.ServeStdio(s)
}

func listDevicesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling list devices request.")

	type entry struct {
		Name            string                     `json:"name"`
		NumberOfBanks   int                        `json:"numberOfBanks"`
		PatchesPerBank  int                        `json:"patchesPerBank"`
		BankDescriptors []librarian.BankDescriptor `json:"bankDescriptors,omitempty"`
	}

	var list []entry
	for _, d := range devices.All() {
		list = append(list, entry{
			Name:            d.Name(),
			NumberOfBanks:   d.NumberOfBanks(),
			PatchesPerBank:  d.PatchesPerBank(),
			BankDescriptors: d.BankDescriptors(),
		})
	}

	asJson, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device list: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func inspectHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling inspect dump request.")

	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	device, data, err := loadDump(path, request.GetString("device", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	asJson, err := json.MarshalIndent(librarian.Inspect(device, data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func renameHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling rename patch request.")

	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	device, data, err := loadDump(path, request.GetString("device", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	renamed, err := device.Rename(data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to rename patch: %v", err)
	}
	if err := os.WriteFile(output, renamed, 0644); err != nil {
		return nil, fmt.Errorf("failed to write renamed dump: %v", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Renamed patch to %q, wrote %s.", device.NameFromDump(renamed), output)), nil
}

// loadDump reads and validates a dump file and resolves the device either
// by name or by asking every adapter whether it recognizes the data.
func loadDump(path, deviceName string) (librarian.Device, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dump: %v", err)
	}
	if err := sysex.Validate(data); err != nil {
		return nil, nil, fmt.Errorf("not a valid SysEx file: %v", err)
	}

	if deviceName != "" {
		device, ok := devices.ByName(deviceName)
		if !ok {
			return nil, nil, fmt.Errorf("unknown device %q", deviceName)
		}
		return device, data, nil
	}

	device, _, ok := librarian.Identify(data, devices.All())
	if !ok {
		return nil, nil, fmt.Errorf("dump not recognized by any supported device")
	}
	return device, data, nil
}
