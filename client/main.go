package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/wfunc/drawserver/network"
)

// send wraps data in an event frame.
func send(c *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(network.Packet{Event: event, Data: raw})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

const usage = `commands:
  create <name>         create a room
  join <code> <name>    join a room
  start                 start the game
  pick <word>           choose the word to draw
  guess <word>          guess the word
  say <text>            chat
  draw <x> <y>          send a one-point stroke
  clear                 clear the canvas
  end                   end your turn
  leave                 leave the room`

func main() {
	addr := pflag.String("addr", "localhost:4000", "server host:port")
	pflag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	roomID := ""
	rooms := make(chan string, 1)

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var packet network.Packet
			if err := json.Unmarshal(message, &packet); err != nil {
				log.Printf("Received invalid frame: %s", message)
				continue
			}
			if packet.Event == network.EventRoomCreated || packet.Event == network.EventRoomJoined {
				var ref struct {
					RoomID string `json:"roomId"`
				}
				if json.Unmarshal(packet.Data, &ref) == nil {
					rooms <- ref.RoomID
				}
			}
			log.Printf("<- %s %s", packet.Event, packet.Data)
		}
	}()

	log.Println(usage)
	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- strings.TrimSpace(reader.Text())
		}
	}()

	for {
		select {
		case <-done:
			return
		case id := <-rooms:
			roomID = id
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case text := <-lines:
			if err := run(c, roomID, text); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func run(c *websocket.Conn, roomID, text string) error {
	cmd, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "create":
		return send(c, network.EventCreateRoom, map[string]string{"playerName": rest})
	case "join":
		code, name, _ := strings.Cut(rest, " ")
		return send(c, network.EventJoinRoom, map[string]string{"roomId": code, "playerName": name})
	case "start":
		return send(c, network.EventStartGame, map[string]string{"roomId": roomID})
	case "pick":
		return send(c, network.EventWordSelected, map[string]string{"roomId": roomID, "word": rest})
	case "guess":
		return send(c, network.EventGuessWord, map[string]string{"roomId": roomID, "word": rest})
	case "say":
		return send(c, network.EventSendMessage, map[string]string{"roomId": roomID, "message": rest})
	case "draw":
		x, y, _ := strings.Cut(rest, " ")
		return send(c, network.EventDraw, map[string]any{
			"roomId":  roomID,
			"strokes": []map[string]string{{"x": x, "y": y}},
		})
	case "clear":
		return send(c, network.EventClearCanvas, map[string]string{"roomId": roomID})
	case "end":
		return send(c, network.EventTurnEnd, map[string]string{"roomId": roomID})
	case "leave":
		return send(c, network.EventLeaveRoom, map[string]string{"roomId": roomID})
	case "":
		return nil
	default:
		log.Println(usage)
		return nil
	}
}
