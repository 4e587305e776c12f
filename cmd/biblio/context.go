package main

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"biblioaccess/internal/client"
	"biblioaccess/internal/config"
	"biblioaccess/internal/session"
)

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	sessionOnce sync.Once
	session     *session.Store
	sessionErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
			cfg.Server.BaseURL = strings.TrimSpace(*c.serverFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureSession() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.sessionOnce.Do(func() {
		c.session, c.sessionErr = session.Open(cfg)
	})
	return c.session, c.sessionErr
}

// withClient hands a ready API client to fn. The session store backing the
// client stays open for the lifetime of the call.
func (c *commandContext) withClient(fn func(*client.Client, *session.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	return fn(client.New(cfg, sess), sess)
}

// requireProfile returns the cached identity or an error telling the user to
// sign in.
func requireProfile(sess *session.Store) (*session.Profile, error) {
	profile, err := sess.Profile()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("not signed in; run `biblio login` first")
	}
	return profile, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
