// Command token mints an access token for a user id, signed with the
// server's configured secret. It reads the same config sources as the
// server, plus:
//
//	-user string   subject of the token (required)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/fragkeeper/internal/flagx"
	"github.com/dmitrijs2005/fragkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fragkeeper/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	var userID string
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	fs.StringVar(&userID, "user", "", "user id to issue the token for")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-user"}))

	if userID == "" {
		log.Fatal("-user is required")
	}

	token, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(token)

}
