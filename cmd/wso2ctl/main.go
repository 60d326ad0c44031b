package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("WSO2GATE_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("WSO2GATE_ADMIN_KEY", "")
		out     = envOr("WSO2GATE_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "wso2ctl",
		Short: "CLI admin para wso2gate (solo /admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "health" {
				return nil
			}
			if apiKey == "" {
				return fmt.Errorf("falta API key (flag --admin-api-key o env WSO2GATE_ADMIN_KEY)")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "URL base del servicio (env WSO2GATE_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "API key del Admin API (env WSO2GATE_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, APIKey: apiKey, OutFormat: out, HTTP: httpClient}

	// health: GET /healthz, no requiere API key
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Consulta /healthz del servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("servicio degradado: status=%d", status)
			}
			return nil
		},
	}

	// ping: usa GET /admin/departments para validar la API key
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al Admin API (requiere X-Admin-API-Key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/departments", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, []byte(`{"ok":true}`))
			return nil
		},
	}

	depsCmd := &cobra.Command{
		Use:   "departments",
		Short: "Gestión de la lista blanca de departamentos",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar departamentos registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/departments", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("status=%d", status)
			}
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Mostrar un departamento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/departments/"+args[0], nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("status=%d", status)
			}
			return nil
		},
	}

	var setLabel string
	var setDenied bool
	setCmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Crear o actualizar un departamento permitido",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			allowed := !setDenied
			payload, _ := json.Marshal(map[string]any{
				"label":      setLabel,
				"is_allowed": allowed,
			})
			status, body, err := cl.do("PUT", "/admin/departments/"+args[0], payload)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("status=%d", status)
			}
			return nil
		},
	}
	setCmd.Flags().StringVar(&setLabel, "label", "", "Etiqueta legible del departamento (opcional)")
	setCmd.Flags().BoolVar(&setDenied, "denied", false, "Registrar el departamento como NO permitido")

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Eliminar un departamento (y su grupo asociado)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("DELETE", "/admin/departments/"+args[0], nil)
			if err != nil {
				return err
			}
			if status == http.StatusNoContent {
				if cl.OutFormat == "text" {
					fmt.Println("ok")
				} else {
					cl.print(status, []byte(`{"ok":true}`))
				}
				return nil
			}
			cl.print(status, body)
			return fmt.Errorf("status=%d", status)
		},
	}

	depsCmd.AddCommand(listCmd, getCmd, setCmd, deleteCmd)
	root.AddCommand(healthCmd, pingCmd, depsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
