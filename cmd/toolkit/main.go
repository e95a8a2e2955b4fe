package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raywall/fast-entity-toolkit/validation"
)

// Report é o resultado de `toolkit validate`.
type Report struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Types  int      `json:"types"`
	Rules  int      `json:"rules"`
	Errors []string `json:"errors,omitempty"`
}

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	filePtr := validateCmd.String("file", "", "Caminho do arquivo YAML de regras")

	if len(os.Args) < 2 {
		fmt.Println("Comandos esperados: validate")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *filePtr == "" {
			fmt.Println("Erro: flag -file é obrigatória")
			os.Exit(1)
		}
		if err := runValidate(os.Stdout, *filePtr, os.Getenv("OUTPUT_FORMAT") == "json"); err != nil {
			os.Exit(1) // Falha no CI
		}
	default:
		fmt.Println("Comando desconhecido")
		os.Exit(1)
	}
}

var errInvalidRules = errors.New("arquivo de regras inválido")

// runValidate carrega o arquivo e compila cada especificação de constraint.
func runValidate(out io.Writer, path string, asJSON bool) error {
	report := Report{File: path, Valid: true}

	rs, err := validation.LoadRules(path)
	if rs != nil {
		report.Types = len(rs.Types)
		report.Rules = rs.Count()
	}
	if err != nil {
		report.Valid = false
		report.Errors = strings.Split(err.Error(), "\n")
	}

	if asJSON {
		// Output JSON para integração com o frontend
		if err := json.NewEncoder(out).Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "🔍 Analisando regras: %s ...\n", path)
		if report.Valid {
			fmt.Fprintf(out, "✅ %d regras válidas em %d tipos\n", report.Rules, report.Types)
		} else {
			fmt.Fprintln(out, "❌ O arquivo contém erros:")
			for _, e := range report.Errors {
				fmt.Fprintf(out, " - %s\n", e)
			}
		}
	}

	if !report.Valid {
		return errInvalidRules
	}
	return nil
}
