// Package main serves the union membership API.
//
// @title Union API
// @version v1
// @description Members and organizations.
// @server https://union.example.com Production
// @tag.name accounts
// @tag.description Organization accounts
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key
package main

func main() {}
