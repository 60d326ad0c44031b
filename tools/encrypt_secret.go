// Cifra un secreto de configuración con la clave maestra de secretbox.
// El resultado se pega en config.yaml con el prefijo "enc:".
//
// Uso:
//
//	SECRETBOX_MASTER_KEY=$(openssl rand -base64 32) \
//	go run tools/encrypt_secret.go 'postgres://user:pass@db:5432/wso2gate'
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dropDatabas3/wso2gate/internal/security/secretbox"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("uso: go run tools/encrypt_secret.go <secreto>")
	}

	encrypted, err := secretbox.Encrypt(os.Args[1])
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}
	fmt.Printf("enc:%s\n", encrypted)
}
