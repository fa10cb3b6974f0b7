package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"camp-proximity/internal/config"
	"camp-proximity/internal/excel"
	"camp-proximity/internal/mapgen"
	"camp-proximity/internal/proximity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// === Job System ===

type JobStatus string

const (
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusError   JobStatus = "error"
)

type JobResult struct {
	Rows        int     `json:"rows"`
	ThresholdKm float64 `json:"threshold_km"`
	Output      string  `json:"output"`
	Filename    string  `json:"filename"`
	MapFilename string  `json:"map_filename"`
}

type Job struct {
	ID        string
	Status    JobStatus
	Logs      []string
	Result    *JobResult
	Error     string
	Mutex     sync.RWMutex
	CreatedAt time.Time
}

var (
	JobStore = make(map[string]*Job)
	JobLock  sync.RWMutex
)

func NewJob() *Job {
	return &Job{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		Logs:      []string{},
		CreatedAt: time.Now(),
	}
}

func (j *Job) Log(msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	ts := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func GetJob(id string) *Job {
	JobLock.RLock()
	defer JobLock.RUnlock()
	return JobStore[id]
}

// jobLogger builds a zap logger whose output lands in the job's log lines,
// so filter diagnostics show up in the UI.
func jobLogger(job *Job) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&jobWriter{job: job}),
		zap.InfoLevel,
	)
	return zap.New(core)
}

type jobWriter struct {
	job *Job
}

func (w *jobWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line != "" {
			w.job.Log(line)
		}
	}
	return len(p), nil
}

// === Main ===

func main() {
	cfg := config.Load()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.LoadHTMLGlob("templates/*")

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"DefaultThreshold": cfg.ThresholdKm,
		})
	})

	r.POST("/run", func(c *gin.Context) {
		file, err := c.FormFile("input_file")
		if err != nil {
			c.HTML(http.StatusOK, "index.html", gin.H{"Message": "Please choose a file."})
			return
		}

		thresholdKm := cfg.ThresholdKm
		if v := c.PostForm("threshold_km"); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
				thresholdKm = parsed
			}
		}

		os.MkdirAll("uploads", 0755)
		os.MkdirAll("output", 0755)

		inputPath := filepath.Join("uploads", fmt.Sprintf("%s_%s", uuid.New().String(), file.Filename))
		if err := c.SaveUploadedFile(file, inputPath); err != nil {
			c.HTML(http.StatusOK, "index.html", gin.H{"Message": "Upload failed."})
			return
		}

		job := NewJob()
		JobLock.Lock()
		JobStore[job.ID] = job
		JobLock.Unlock()

		go processJob(job, cfg, inputPath, thresholdKm)

		c.HTML(http.StatusOK, "index.html", gin.H{
			"JobID":   job.ID,
			"Message": "Processing started...",
		})
	})

	r.GET("/logs", func(c *gin.Context) {
		job := GetJob(c.Query("job_id"))
		if job == nil {
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "Job not found"})
			return
		}
		job.Mutex.RLock()
		logs := make([]string, len(job.Logs))
		copy(logs, job.Logs)
		status := job.Status
		job.Mutex.RUnlock()

		c.JSON(http.StatusOK, gin.H{"ok": true, "logs": logs, "status": status})
	})

	r.GET("/status", func(c *gin.Context) {
		job := GetJob(c.Query("job_id"))
		if job == nil {
			c.JSON(http.StatusOK, gin.H{"ok": false})
			return
		}
		job.Mutex.RLock()
		defer job.Mutex.RUnlock()

		res := gin.H{"ok": true, "status": job.Status, "error": job.Error}
		if job.Result != nil {
			res["result"] = job.Result
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/download-result/:filename", func(c *gin.Context) {
		c.File(filepath.Join("output", filepath.Base(c.Param("filename"))))
	})

	r.GET("/map/:filename", func(c *gin.Context) {
		c.File(filepath.Join("output", filepath.Base(c.Param("filename"))))
	})

	fmt.Printf("Camp proximity server running on port %s\n", cfg.ServerPort)
	r.Run(":" + cfg.ServerPort)
}

func processJob(job *Job, cfg config.Config, inputPath string, thresholdKm float64) {
	defer func() {
		if r := recover(); r != nil {
			job.Mutex.Lock()
			job.Status = StatusError
			job.Error = fmt.Sprintf("Panic: %v", r)
			job.Mutex.Unlock()
		}
	}()

	log := jobLogger(job)
	job.Log(fmt.Sprintf("Processing file: %s", filepath.Base(inputPath)))

	table, err := excel.ReadTable(inputPath)
	if err != nil {
		failJob(job, fmt.Sprintf("Could not read point table: %v", err))
		return
	}
	job.Log(fmt.Sprintf("Loaded %d points.", len(table.Rows)))

	start := time.Now()
	job.Log(fmt.Sprintf("Filtering within %.2f km of camp (%.4f, %.4f)...",
		thresholdKm, cfg.Camp.Lat, cfg.Camp.Lon))
	filtered := proximity.Filter(table, cfg.Camp, thresholdKm, log)
	job.Log(fmt.Sprintf("Filtering done in %s, %d points retained.", time.Since(start), len(filtered.Rows)))

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join("output", base+"_filtered.xlsx")
	mapPath := filepath.Join("output", base+"_map.html")

	if !filtered.Empty() {
		job.Log("Writing filtered table...")
		if err := excel.WriteTable(outputPath, filtered); err != nil {
			failJob(job, fmt.Sprintf("Could not write result: %v", err))
			return
		}
	} else {
		job.Log("No points within threshold, skipping table output.")
		outputPath = ""
	}

	job.Log("Rendering map...")
	if err := mapgen.Render(filtered, cfg.Camp, mapPath, log); err != nil {
		failJob(job, fmt.Sprintf("Could not render map: %v", err))
		return
	}

	job.Mutex.Lock()
	job.Status = StatusDone
	job.Logs = append(job.Logs, fmt.Sprintf("[%s] Job finished.", time.Now().Format("15:04:05")))
	result := &JobResult{
		Rows:        len(filtered.Rows),
		ThresholdKm: thresholdKm,
		Output:      outputPath,
		MapFilename: filepath.Base(mapPath),
	}
	if outputPath != "" {
		result.Filename = filepath.Base(outputPath)
	}
	job.Result = result
	job.Mutex.Unlock()
}

func failJob(job *Job, msg string) {
	job.Mutex.Lock()
	job.Status = StatusError
	job.Error = msg
	job.Logs = append(job.Logs, "[ERROR] "+msg)
	job.Mutex.Unlock()
}
