package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"
)

// Version information injected at build time with -ldflags "-X ...".
// GitCommit and BuildTime fall back to the VCS stamp of the binary.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func buildVersion() VersionResponse {
	resp := VersionResponse{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return resp
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && resp.GitCommit == "unknown":
			resp.GitCommit = s.Value
		case s.Key == "vcs.time" && resp.BuildTime == "unknown":
			resp.BuildTime = s.Value
		}
	}
	return resp
}

// VersionHandler reports the build of the running server
// @Summary Server version
// @Tags health
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /api/version [get]
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildVersion())
}
