package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/bookdrill/internal/adapter/repository"
)

// backupTables lists the tables eligible for export and import, in
// dependency-safe insert order.
func backupTables() []string {
	models := repository.Models()
	names := make([]string, 0, len(models))
	for _, m := range models {
		if named, ok := m.(interface{ TableName() string }); ok {
			names = append(names, named.TableName())
		}
	}
	return names
}

// selectTables filters the canonical table list down to the requested subset,
// preserving canonical order. Unknown names are dropped.
func selectTables(requested []string) []string {
	all := backupTables()
	if len(requested) == 0 {
		return all
	}
	wanted := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		wanted[name] = struct{}{}
	}
	result := make([]string, 0, len(requested))
	for _, name := range all {
		if _, ok := wanted[name]; ok {
			result = append(result, name)
		}
	}
	return result
}

func tablesFromConfig(key string) []string {
	return normalizeTables(viper.GetStringSlice(key))
}

func normalizeTables(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		result = append(result, strings.ToLower(name))
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
