// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/alvinbaena/pwd-analyzer/pkg/analysis"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type analyzeApi struct {
	service   *analysis.Service
	maxLength int
}

func (a *analyzeApi) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a non empty password is required"})
		return
	}

	if utf8.RuneCountInString(req.Password) > a.maxLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("password must be at most %d characters", a.maxLength)})
		return
	}

	report := a.service.Analyze(c.Request.Context(), req.Password)
	if report.Breach.Failed() {
		// The error only carries the hash prefix, never the password.
		log.Warn().Err(report.Breach.Err).Msg("breach lookup unavailable")
	}

	c.JSON(http.StatusOK, newAnalyzeResponse(report))
}

func (a *analyzeApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.service.CheckHash(c.Request.Context(), req.Hash)
	if errors.Is(err, hibp.ErrInvalidHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if res.Failed() {
		log.Warn().Err(res.Err).Msg("breach lookup unavailable")
	}

	c.JSON(http.StatusOK, breachResponse{Breaches: res.Count, BreachStatus: res.Status()})
}

// RegisterAnalyzeApi mounts the analysis endpoints on group.
func RegisterAnalyzeApi(group *gin.RouterGroup, service *analysis.Service, maxLength int) {
	a := &analyzeApi{service: service, maxLength: maxLength}

	group.POST("/analyze", a.analyze)
	group.POST("/breach/hash", a.checkHash)
}
