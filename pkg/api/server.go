// Package api provides the REST API server for synthlibrarian
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/librarian/devices"
	"github.com/james-see/synthlibrarian/pkg/sysex"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title SynthLibrarian API
// @version 1.0
// @description API for inspecting and editing synthesizer SysEx dumps
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/devices", listDevices)
		v1.GET("/devices/:device/banks", listBanks)
		v1.GET("/devices/:device/requests/editbuffer", editBufferRequest)
		v1.GET("/devices/:device/requests/program", programDumpRequest)
		v1.POST("/classify", handleClassify)
		v1.POST("/inspect", handleInspect)
		v1.POST("/rename", handleRename)
		v1.POST("/rename-layer", handleRenameLayer)
		v1.POST("/convert/editbuffer", handleConvertToEditBuffer)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "synthlibrarian",
	})
}

// listDevices godoc
// @Summary List supported devices
// @Description Returns the supported device adaptations and their capabilities
// @Tags info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/devices [get]
func listDevices(c *gin.Context) {
	var out []gin.H
	for _, d := range devices.All() {
		entry := gin.H{
			"name":           d.Name(),
			"banks":          d.NumberOfBanks(),
			"patchesPerBank": d.PatchesPerBank(),
		}
		_, isProgramDumper := d.(librarian.ProgramDumper)
		_, isLayered := d.(librarian.Layered)
		_, isTagged := d.(librarian.Tagged)
		entry["programDumps"] = isProgramDumper
		entry["layers"] = isLayered
		entry["tags"] = isTagged
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

// listBanks godoc
// @Summary List bank descriptors for a device
// @Tags info
// @Produce json
// @Param device path string true "Device identifier (solaris, matrix6)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/v1/devices/{device}/banks [get]
func listBanks(c *gin.Context) {
	device, ok := devices.ByName(c.Param("device"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banks": device.BankDescriptors()})
}

// editBufferRequest godoc
// @Summary Build an edit buffer request message
// @Tags requests
// @Produce application/octet-stream
// @Param device path string true "Device identifier"
// @Param channel query int false "MIDI channel (default 0)"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/v1/devices/{device}/requests/editbuffer [get]
func editBufferRequest(c *gin.Context) {
	device, ok := devices.ByName(c.Param("device"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown device"})
		return
	}
	channel, _ := strconv.Atoi(c.DefaultQuery("channel", "0"))
	sendSyx(c, "editbuffer-request.syx", device.EditBufferRequest(channel))
}

// programDumpRequest godoc
// @Summary Build a program dump request message
// @Tags requests
// @Produce application/octet-stream
// @Param device path string true "Device identifier"
// @Param program query int true "Program number"
// @Param channel query int false "MIDI channel (default 0)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/devices/{device}/requests/program [get]
func programDumpRequest(c *gin.Context) {
	device, ok := devices.ByName(c.Param("device"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown device"})
		return
	}
	pd, ok := device.(librarian.ProgramDumper)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device has no program dump capability"})
		return
	}
	program, err := strconv.Atoi(c.Query("program"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid program number"})
		return
	}
	channel, _ := strconv.Atoi(c.DefaultQuery("channel", "0"))
	sendSyx(c, "program-request.syx", pd.ProgramDumpRequest(channel, program))
}

// handleClassify godoc
// @Summary Classify an uploaded dump
// @Description Uploads a .syx dump and reports which device and dump kind it is
// @Tags dumps
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true ".syx dump"
// @Param device query string false "Restrict to one device"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/classify [post]
func handleClassify(c *gin.Context) {
	data, _, ok := uploadedDump(c)
	if !ok {
		return
	}
	if name := c.Query("device"); name != "" {
		device, found := devices.ByName(name)
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown device"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"device": device.Name(), "kind": librarian.Classify(device, data)})
		return
	}
	device, kind, found := librarian.Identify(data, devices.All())
	if !found {
		c.JSON(http.StatusOK, gin.H{"device": "", "kind": librarian.KindUnknown})
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": device.Name(), "kind": kind})
}

// handleInspect godoc
// @Summary Inspect an uploaded dump
// @Description Returns patch name, layer names and stored tags
// @Tags dumps
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true ".syx dump"
// @Param device query string false "Device (default: auto-detect)"
// @Success 200 {object} librarian.Summary
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	data, _, ok := uploadedDump(c)
	if !ok {
		return
	}
	device, ok := resolveDevice(c, data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, librarian.Inspect(device, data))
}

// handleRename godoc
// @Summary Rename the patch in an uploaded dump
// @Description Returns the dump with the new name spliced in and checksums recomputed
// @Tags dumps
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx dump"
// @Param name query string true "New patch name"
// @Param device query string false "Device (default: auto-detect)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/rename [post]
func handleRename(c *gin.Context) {
	data, filename, ok := uploadedDump(c)
	if !ok {
		return
	}
	newName := c.Query("name")
	if newName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		return
	}
	device, ok := resolveDevice(c, data)
	if !ok {
		return
	}
	renamed, err := device.Rename(data, newName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sendSyx(c, filename, renamed)
}

// handleRenameLayer godoc
// @Summary Rename one layer of an uploaded dump
// @Tags dumps
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx dump"
// @Param layer query int true "Layer index (0-based)"
// @Param name query string true "New layer name"
// @Param device query string false "Device (default: auto-detect)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/rename-layer [post]
func handleRenameLayer(c *gin.Context) {
	data, filename, ok := uploadedDump(c)
	if !ok {
		return
	}
	device, ok := resolveDevice(c, data)
	if !ok {
		return
	}
	ld, isLayered := device.(librarian.Layered)
	if !isLayered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device has no layers"})
		return
	}
	layer, err := strconv.Atoi(c.Query("layer"))
	if err != nil || layer < 0 || layer >= ld.LayerCount(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid layer index"})
		return
	}
	newName := c.Query("name")
	if newName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		return
	}
	renamed, err := ld.RenameLayer(data, layer, newName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sendSyx(c, filename, renamed)
}

// handleConvertToEditBuffer godoc
// @Summary Convert a program dump to an edit buffer send
// @Tags dumps
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx dump"
// @Param channel query int false "MIDI channel (default 0)"
// @Param device query string false "Device (default: auto-detect)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/editbuffer [post]
func handleConvertToEditBuffer(c *gin.Context) {
	data, filename, ok := uploadedDump(c)
	if !ok {
		return
	}
	device, ok := resolveDevice(c, data)
	if !ok {
		return
	}
	channel, _ := strconv.Atoi(c.DefaultQuery("channel", "0"))
	converted, err := device.ConvertToEditBuffer(channel, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sendSyx(c, filename, converted)
}

func uploadedDump(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	if err := sysex.Validate(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}
	return data, header.Filename, true
}

func resolveDevice(c *gin.Context, data []byte) (librarian.Device, bool) {
	if name := c.Query("device"); name != "" {
		device, ok := devices.ByName(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown device"})
			return nil, false
		}
		return device, true
	}
	device, _, ok := librarian.Identify(data, devices.All())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dump not recognized by any device"})
		return nil, false
	}
	return device, true
}

func sendSyx(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}
