// Package main is the entry point for the synthlibrarian CLI
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/james-see/synthlibrarian/pkg/api"
	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/librarian/devices"
	"github.com/james-see/synthlibrarian/pkg/mcp"
	"github.com/james-see/synthlibrarian/pkg/mididetect"
	"github.com/james-see/synthlibrarian/pkg/sysex"
	"github.com/james-see/synthlibrarian/pkg/tui"
	"github.com/spf13/cobra"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile  string
	deviceName  string
	midiChannel int
	serverPort  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "synthlibrarian",
	Short: "Inspect and rework synthesizer SysEx dumps",
	Long: `synthlibrarian is a librarian tool for hardware synthesizers. It reads
SysEx dump files, tells you what they are, extracts and rewrites patch
names, and builds the request messages needed to talk to the units.

Supports the John Bowen Solaris and the Oberheim Matrix 6/6R.

Examples:
  synthlibrarian inspect preset.syx
  synthlibrarian rename preset.syx "Solar Wind" -o renamed.syx
  synthlibrarian request editbuffer -d solaris -o request.syx
  synthlibrarian detect
  synthlibrarian tui
  synthlibrarian serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the supported devices and their bank layout",
	RunE:  runDevices,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.syx>",
	Short: "Show device, dump kind, patch name, layers and tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <input.syx>",
	Short: "Report whether a dump is an edit buffer or a single program dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var nameCmd = &cobra.Command{
	Use:   "name <input.syx>",
	Short: "Print the patch name stored in a dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runName,
}

var renameCmd = &cobra.Command{
	Use:   "rename <input.syx> <new name>",
	Short: "Rewrite the patch name inside a dump",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var layersCmd = &cobra.Command{
	Use:   "layers <input.syx>",
	Short: "List the layer names of a multi-layer dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayers,
}

var renameLayerCmd = &cobra.Command{
	Use:   "rename-layer <input.syx> <layer> <new name>",
	Short: "Rewrite one layer name inside a dump",
	Args:  cobra.ExactArgs(3),
	RunE:  runRenameLayer,
}

var toEditBufferCmd = &cobra.Command{
	Use:   "to-editbuffer <input.syx>",
	Short: "Convert a dump into messages that load the unit's edit buffer",
	Args:  cobra.ExactArgs(1),
	RunE:  runToEditBuffer,
}

var requestCmd = &cobra.Command{
	Use:   "request <editbuffer|program> [program number]",
	Short: "Build a dump request message for a device",
	Long: `Builds the SysEx message that asks a device for a dump and writes it to
a .syx file, ready to send with any MIDI utility. Requires --device.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRequest,
}

var syx2midCmd = &cobra.Command{
	Use:   "syx2mid <input.syx>",
	Short: "Wrap a dump into a Standard MIDI File for DAW playback",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyxToMid,
}

var mid2syxCmd = &cobra.Command{
	Use:   "mid2syx <input.mid>",
	Short: "Extract the SysEx messages from a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE:  runMidToSyx,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan the MIDI ports for supported devices",
	RunE:  runDetect,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the available MIDI ports",
	RunE:  runPorts,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the librarian over the Model Context Protocol on stdio",
	RunE:  runMCP,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Device (solaris, matrix6); auto-detected from the dump when omitted")

	renameCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")
	renameLayerCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")

	toEditBufferCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")
	toEditBufferCmd.Flags().IntVarP(&midiChannel, "channel", "c", 0, "MIDI channel (0-15)")

	requestCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")
	requestCmd.Flags().IntVarP(&midiChannel, "channel", "c", 0, "MIDI channel (0-15)")

	syx2midCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	mid2syxCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(layersCmd)
	rootCmd.AddCommand(renameLayerCmd)
	rootCmd.AddCommand(toEditBufferCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(syx2midCmd)
	rootCmd.AddCommand(mid2syxCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadDump reads and validates a dump file and picks the device adapter,
// either from --device or by asking every adapter.
func loadDump(path string) (librarian.Device, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if err := sysex.Validate(data); err != nil {
		return nil, nil, fmt.Errorf("%s is not a valid SysEx file: %w", path, err)
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
		return nil, nil, fmt.Errorf("%s is not recognized by any supported device", path)
	}
	return device, data, nil
}

func requireDevice() (librarian.Device, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("--device is required")
	}
	device, ok := devices.ByName(deviceName)
	if !ok {
		return nil, fmt.Errorf("unknown device %q", deviceName)
	}
	return device, nil
}

func getOutputPath(input, suffix string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + suffix
}

func runDevices(cmd *cobra.Command, args []string) error {
	for _, d := range devices.All() {
		fmt.Printf("%s: %d banks of %d patches\n", d.Name(), d.NumberOfBanks(), d.PatchesPerBank())
		for _, b := range d.BankDescriptors() {
			rom := ""
			if b.ROM {
				rom = " (ROM)"
			}
			fmt.Printf("  %3d %-24s %d patches%s\n", b.Bank, b.Name, b.Size, rom)
		}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	device, data, err := loadDump(args[0])
	if err != nil {
		return err
	}

	s := librarian.Inspect(device, data)
	fmt.Printf("Device: %s\n", s.Device)
	fmt.Printf("Kind:   %s\n", s.Kind)
	fmt.Printf("Name:   %s\n", s.Name)
	for i, layer := range s.Layers {
		fmt.Printf("Layer %d: %s\n", i+1, layer)
	}
	if len(s.Tags) > 0 {
		fmt.Printf("Tags:   %s\n", strings.Join(s.Tags, ", "))
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	device, data, err := loadDump(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", device.Name(), librarian.Classify(device, data))
	return nil
}

func runName(cmd *cobra.Command, args []string) error {
	device, data, err := loadDump(args[0])
	if err != nil {
		return err
	}
	fmt.Println(device.NameFromDump(data))
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	input := args[0]
	device, data, err := loadDump(input)
	if err != nil {
		return err
	}

	renamed, err := device.Rename(data, args[1])
	if err != nil {
		return err
	}

	output := getOutputPath(input, "-renamed.syx")
	if err := os.WriteFile(output, renamed, 0644); err != nil {
		return err
	}
	fmt.Printf("Renamed to %q -> %s\n", device.NameFromDump(renamed), output)
	return nil
}

func runLayers(cmd *cobra.Command, args []string) error {
	device, data, err := loadDump(args[0])
	if err != nil {
		return err
	}

	layered, ok := device.(librarian.Layered)
	if !ok {
		return fmt.Errorf("%s has no named layers", device.Name())
	}
	n := layered.LayerCount(data)
	for i := 0; i < n; i++ {
		fmt.Printf("%d: %s\n", i+1, layered.LayerName(data, i))
	}
	return nil
}

func runRenameLayer(cmd *cobra.Command, args []string) error {
	input := args[0]
	device, data, err := loadDump(input)
	if err != nil {
		return err
	}

	layered, ok := device.(librarian.Layered)
	if !ok {
		return fmt.Errorf("%s has no named layers", device.Name())
	}

	layer, err := strconv.Atoi(args[1])
	if err != nil || layer < 1 || layer > layered.LayerCount(data) {
		return fmt.Errorf("layer must be between 1 and %d", layered.LayerCount(data))
	}

	renamed, err := layered.RenameLayer(data, layer-1, args[2])
	if err != nil {
		return err
	}

	output := getOutputPath(input, "-renamed.syx")
	if err := os.WriteFile(output, renamed, 0644); err != nil {
		return err
	}
	fmt.Printf("Renamed layer %d to %q -> %s\n", layer, layered.LayerName(renamed, layer-1), output)
	return nil
}

func runToEditBuffer(cmd *cobra.Command, args []string) error {
	input := args[0]
	device, data, err := loadDump(input)
	if err != nil {
		return err
	}

	converted, err := device.ConvertToEditBuffer(midiChannel, data)
	if err != nil {
		return err
	}

	output := getOutputPath(input, "-editbuffer.syx")
	if err := os.WriteFile(output, converted, 0644); err != nil {
		return err
	}
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	device, err := requireDevice()
	if err != nil {
		return err
	}

	var msg []byte
	switch args[0] {
	case "editbuffer":
		msg = device.EditBufferRequest(midiChannel)
	case "program":
		dumper, ok := device.(librarian.ProgramDumper)
		if !ok {
			return fmt.Errorf("%s cannot dump single programs", device.Name())
		}
		if len(args) < 2 {
			return fmt.Errorf("program request needs a program number")
		}
		program, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid program number %q", args[1])
		}
		msg = dumper.ProgramDumpRequest(midiChannel, program)
	default:
		return fmt.Errorf("unknown request type %q (want editbuffer or program)", args[0])
	}

	if outputFile == "" {
		fmt.Println(strings.ToUpper(hex.EncodeToString(msg)))
		return nil
	}
	if err := os.WriteFile(outputFile, msg, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s request -> %s\n", args[0], outputFile)
	return nil
}

func runSyxToMid(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if err := sysex.Validate(data); err != nil {
		return fmt.Errorf("%s is not a valid SysEx file: %w", input, err)
	}

	mid, err := sysex.WrapSMF(data)
	if err != nil {
		return err
	}

	output := getOutputPath(input, ".mid")
	if err := os.WriteFile(output, mid, 0644); err != nil {
		return err
	}
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runMidToSyx(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	syx, err := sysex.ExtractSMF(data)
	if err != nil {
		return err
	}

	output := getOutputPath(input, ".syx")
	if err := os.WriteFile(output, syx, 0644); err != nil {
		return err
	}
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	fmt.Println("Scanning MIDI ports...")
	results, err := mididetect.Scan(devices.All())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No supported devices found.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s on channel %d (in: %s, out: %s)\n", r.Device.Name(), r.Channel+1, r.InPort, r.OutPort)
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ins, outs, err := mididetect.ListPorts()
	if err != nil {
		return err
	}
	fmt.Println("Inputs:")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("Outputs:")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}

func runMCP(cmd *cobra.Command, args []string) error {
	return mcp.Serve(version)
}
