package main

import "fmt"

func printHelp() {
	fmt.Print(`gamehub-migrate - перенос данных клиентского хранилища в реляционную БД

Usage:
  gamehub-migrate [flags] <command> [table]

Commands:
  migrate [table]   Мигрировать все таблицы (или одну указанную)
                    Порядок: users, boards, topics, articles, system_config
  rollback <table>  Удалить все мигрированные строки указанной таблицы
  status            Показать журнал миграций (новые записи первыми)
  health            Проверить соединение, схему и целостность данных
  schema            Создать целевые таблицы
  version           Показать версию

Flags:
  -config <path>    Путь к YAML конфигурации (default: config.yaml)
  -create-config    Записать образец конфигурации и выйти
  -version          Показать версию
  -help             Показать эту справку

Examples:
  gamehub-migrate -create-config
  gamehub-migrate -config config.yaml schema
  gamehub-migrate -config config.yaml migrate
  gamehub-migrate -config config.yaml migrate users
  gamehub-migrate -config config.yaml rollback articles
  gamehub-migrate -config config.yaml health

Exit code 0 только при полном успехе: любая таблица с
MigrationResult.success == false даёт ненулевой код выхода.
`)
}
