// Package models defines the data model for the music player service.
package models
