// Package monitoring turns a running simulation into a small HTTP server so
// cache statistics can be watched while a long trace replays.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim"
)

// Monitor exposes the registered caches over HTTP.
type Monitor struct {
	caches     []*cachesim.Cache
	portNumber int
	url        string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000 are
// rejected and a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache to be monitored.
func (m *Monitor) RegisterCache(c *cachesim.Cache) {
	m.caches = append(m.caches, c)
}

// StartServer starts serving the monitoring API and returns immediately.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/caches", m.listCaches)
	r.HandleFunc("/api/stats/{name}", m.cacheStats)
	r.HandleFunc("/api/cache/{name}", m.cacheDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	m.url = fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor URL in the system browser. StartServer
// must have been called first.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		panic("monitor server not started")
	}

	err := browser.OpenURL(m.url + "/api/caches")
	dieOnErr(err)
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, c := range m.caches {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", c.Name())
	}
	fmt.Fprint(w, "]")
}

type statsRsp struct {
	Cache         string  `json:"cache"`
	BytesRead     uint64  `json:"bytes_read"`
	BytesWritten  uint64  `json:"bytes_written"`
	ReadAccesses  uint64  `json:"read_accesses"`
	WriteAccesses uint64  `json:"write_accesses"`
	ReadMisses    uint64  `json:"read_misses"`
	WriteMisses   uint64  `json:"write_misses"`
	Writebacks    uint64  `json:"writebacks"`
	MissRate      float64 `json:"miss_rate"`
}

func (m *Monitor) cacheStats(w http.ResponseWriter, r *http.Request) {
	cache := m.findCacheOr404(w, mux.Vars(r)["name"])
	if cache == nil {
		return
	}

	s := cache.Stats()
	rsp := statsRsp{
		Cache:         cache.Name(),
		BytesRead:     s.BytesRead,
		BytesWritten:  s.BytesWritten,
		ReadAccesses:  s.ReadAccesses,
		WriteAccesses: s.WriteAccesses,
		ReadMisses:    s.ReadMisses,
		WriteMisses:   s.WriteMisses,
		Writebacks:    s.Writebacks,
		MissRate:      s.MissRate(),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) cacheDetails(w http.ResponseWriter, r *http.Request) {
	cache := m.findCacheOr404(w, mux.Vars(r)["name"])
	if cache == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(cache)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) findCacheOr404(
	w http.ResponseWriter,
	name string,
) *cachesim.Cache {
	for _, c := range m.caches {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Cache not found"))
	dieOnErr(err)

	return nil
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
