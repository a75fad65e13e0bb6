package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listBackups(c *gin.Context) {
	backups, err := s.app.Backups.HandleList(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, backups)
}

func (s *Server) createBackup(c *gin.Context) {
	info, err := s.app.Backups.HandleCreate(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, info)
}

// downloadBackup sends the raw backup document rather than an envelope.
func (s *Server) downloadBackup(c *gin.Context) {
	var buf bytes.Buffer
	info, err := s.app.Backups.HandleDownload(c.Request.Context(), sessionFrom(c), c.Param("id"), &buf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "watlas-backup-"+info.ID+".json"))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

func (s *Server) deleteBackup(c *gin.Context) {
	id := c.Param("id")
	if err := s.app.Backups.HandleDelete(c.Request.Context(), sessionFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) restoreBackup(c *gin.Context) {
	result, err := s.app.Backups.HandleRestore(c.Request.Context(), sessionFrom(c), c.Param("id"), c.Query("on_conflict"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}
