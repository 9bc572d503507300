// Package main
//
// @title           PIX Payout API
// @version         1.0
// @description     Idempotent PIX batch payout API with API-key auth, settlement events and metrics.
// @BasePath        /v1
//
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description Type "Bearer {token}" to authenticate.
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package main
