package main

//go:generate swag init -g cmd/accrual/main.go -o docs

// @title           Accrual Service API
// @version         0.1.0
// @description     Daily investment accrual runs, job history and feature switches.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
