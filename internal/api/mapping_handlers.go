package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akichase/scrcpy-mask/internal/mapping"
)

// withJSONSuffix auto-appends ".json" the way every mapping endpoint in the
// original facade does before touching the store.
func withJSONSuffix(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}

func (s *Server) handleGetMappingList(c *gin.Context) {
	names, err := s.mappings.List()
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondOK(c, "ok", names)
}

type readMappingRequest struct {
	File string `json:"file"`
}

func (s *Server) handleReadMapping(c *gin.Context) {
	var req readMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)
	cfg, err := s.mappings.Read(name)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, "ok", cfg)
}

type createMappingRequest struct {
	File   string         `json:"file"`
	Config mapping.Config `json:"config"`
}

func (s *Server) handleCreateMapping(c *gin.Context) {
	var req createMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)
	if !mapping.IsSafeName(name) {
		respondBadRequest(c, fmt.Sprintf("unsafe mapping file name: %s", name))
		return
	}
	if err := s.mappings.Create(name, req.Config, checkScript); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, fmt.Sprintf("created mapping: %s", name), nil)
}

type updateMappingRequest struct {
	File   string         `json:"file"`
	Config mapping.Config `json:"config"`
}

func (s *Server) handleUpdateMapping(c *gin.Context) {
	var req updateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)
	if err := s.mappings.Write(name, req.Config, checkScript); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	active := s.activeMapping
	scid := s.engineSCID
	s.mu.Unlock()
	if active == name && scid != "" {
		s.bindEngine(scid, req.Config)
	}

	respondOK(c, fmt.Sprintf("updated mapping: %s", name), nil)
}

type renameMappingRequest struct {
	File    string `json:"file"`
	NewFile string `json:"new_file"`
}

func (s *Server) handleRenameMapping(c *gin.Context) {
	var req renameMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	oldName := withJSONSuffix(req.File)
	newName := withJSONSuffix(req.NewFile)
	if !mapping.IsSafeName(newName) {
		respondBadRequest(c, fmt.Sprintf("unsafe mapping file name: %s", newName))
		return
	}
	if err := s.mappings.Rename(oldName, newName); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	if s.activeMapping == oldName {
		s.activeMapping = newName
	}
	s.mu.Unlock()

	respondOK(c, fmt.Sprintf("renamed mapping: %s -> %s", oldName, newName), nil)
}

type duplicateMappingRequest struct {
	File    string `json:"file"`
	NewFile string `json:"new_file"`
}

func (s *Server) handleDuplicateMapping(c *gin.Context) {
	var req duplicateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	oldName := withJSONSuffix(req.File)
	newName := withJSONSuffix(req.NewFile)
	if !mapping.IsSafeName(newName) {
		respondBadRequest(c, fmt.Sprintf("unsafe mapping file name: %s", newName))
		return
	}
	if err := s.mappings.Duplicate(oldName, newName); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, fmt.Sprintf("duplicated mapping: %s -> %s", oldName, newName), nil)
}

type deleteMappingRequest struct {
	File string `json:"file"`
}

func (s *Server) handleDeleteMapping(c *gin.Context) {
	var req deleteMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)

	s.mu.Lock()
	active := s.activeMapping
	s.mu.Unlock()
	if active == name {
		respondBadRequest(c, fmt.Sprintf("cannot delete the active mapping: %s", name))
		return
	}

	if err := s.mappings.Delete(name); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, fmt.Sprintf("deleted mapping: %s", name), nil)
}

type migrateMappingRequest struct {
	File string `json:"file"`
}

func (s *Server) handleMigrateMapping(c *gin.Context) {
	var req migrateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)
	cfg, err := s.mappings.Migrate(name)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, "ok", cfg)
}

type changeActiveMappingRequest struct {
	File string `json:"file"`
}

// handleChangeActiveMapping loads the named mapping, validates it, and
// rebinds the runtime engine to it if a main device is currently connected.
func (s *Server) handleChangeActiveMapping(c *gin.Context) {
	var req changeActiveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	name := withJSONSuffix(req.File)

	cfg, err := s.mappings.Read(name)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := mapping.Validate(cfg, checkScript); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	s.activeMapping = name
	scid := s.engineSCID
	s.mu.Unlock()

	if scid != "" {
		s.bindEngine(scid, cfg)
	}

	respondOK(c, fmt.Sprintf("active mapping set: %s", name), nil)
}
